package dto

// RegisterStudentRequest is the request body for student registration.
type RegisterStudentRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	Email       string `json:"email" binding:"omitempty,email"`
	FirstName   string `json:"first_name" binding:"max=150"`
	LastName    string `json:"last_name" binding:"max=150"`
	Gender      string `json:"gender" binding:"omitempty,oneof=male female other"`
	PhoneNumber string `json:"phone_number" binding:"max=20"`
	Birthday    string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Expiry   int64  `json:"expiry"` // Unix timestamp
	Username string `json:"username"`
	UserType string `json:"user_type"`
}

// RegisterStudentResponse echoes the created student identity.
type RegisterStudentResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	QRCode   string `json:"qr_code"`
}

// ScanQRRequest is the request body for QR identity resolution.
type ScanQRRequest struct {
	QRValue string `json:"qr_value"`
}

// StudentScanResponse is the student snapshot returned by a QR scan.
type StudentScanResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Gender   string `json:"gender"`
	Balance  int    `json:"balance"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status"`
	Level    int    `json:"level"`
	Streak   int    `json:"streak"`
	QRValue  string `json:"qr_value"`
}

// AwardPointsRequest is the request body for a point award. Points and
// reason bounds are deliberately unbound here; the service checks them
// and produces the user-facing messages.
type AwardPointsRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Points    int    `json:"points"`
	Reason    string `json:"reason"`
}

// TransactionResponse is one committed ledger entry as clients see it.
type TransactionResponse struct {
	ID              string `json:"id"`
	TransactionType string `json:"transaction_type"`
	Amount          int    `json:"amount"`
	Description     string `json:"description"`
	Time            string `json:"time"`
}

// AwardPointsResponse echoes the committed award.
type AwardPointsResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	NewBalance  int                 `json:"new_balance"`
	Transaction TransactionResponse `json:"transaction"`
}

// AccountResponse is the profile payload for /users/me.
type AccountResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Gender      string `json:"gender"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role"`
	QRCode      string `json:"qr_code,omitempty"`
	Status      string `json:"status"`
}

// ProductResponse is one store catalog item.
type ProductResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PriceInPoints int    `json:"price_in_points"`
	Stock         int    `json:"stock"`
}

// CheckoutItemRequest is one requested product line.
type CheckoutItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// CheckoutRequest is the request body for a store order.
type CheckoutRequest struct {
	Items []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemResponse is one line of a placed order.
type OrderItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	PointsSpent int    `json:"points_spent"`
}

// OrderResponse is one placed order.
type OrderResponse struct {
	ID          string              `json:"id"`
	Status      string              `json:"status"`
	TotalPoints int                 `json:"total_points"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   string              `json:"created_at"`
}
