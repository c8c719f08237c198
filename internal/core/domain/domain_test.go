package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleTeacher.Valid())
	assert.True(t, RoleStudent.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}

func TestAccount_DisplayName(t *testing.T) {
	a := &Account{Username: "jdoe", FirstName: "Jane", LastName: "Doe"}
	assert.Equal(t, "Jane Doe", a.DisplayName())

	a = &Account{Username: "jdoe", FirstName: "Jane"}
	assert.Equal(t, "Jane", a.DisplayName())

	a = &Account{Username: "jdoe"}
	assert.Equal(t, "jdoe", a.DisplayName())
}

func TestAccount_Avatar(t *testing.T) {
	assert.Equal(t, "👦", (&Account{Gender: GenderMale}).Avatar())
	assert.Equal(t, "👧", (&Account{Gender: GenderFemale}).Avatar())
	assert.Equal(t, "⭐", (&Account{Gender: GenderOther}).Avatar())
	assert.Equal(t, "⭐", (&Account{}).Avatar())
}

func TestAccount_Status(t *testing.T) {
	assert.Equal(t, "active", (&Account{Active: true}).Status())
	assert.Equal(t, "inactive", (&Account{}).Status())
}

func TestAccount_RoleChecks(t *testing.T) {
	teacher := &Account{Role: RoleTeacher}
	student := &Account{Role: RoleStudent}

	assert.True(t, teacher.IsTeacher())
	assert.False(t, teacher.IsStudent())
	assert.True(t, student.IsStudent())
	assert.False(t, student.IsTeacher())
}

func TestLedgerEntry_Icon(t *testing.T) {
	tests := []struct {
		kind EntryKind
		want string
	}{
		{EntryKindEarn, "🌟"},
		{EntryKindSpend, "💸"},
		{EntryKindTransfer, "🔄"},
		{EntryKindRefund, "↩️"},
		{EntryKindAdjustment, "⚖️"},
		{EntryKind("other"), "💰"},
	}
	for _, tt := range tests {
		e := &LedgerEntry{Kind: tt.kind}
		assert.Equal(t, tt.want, e.Icon(), "kind %s", tt.kind)
	}
}

func TestLedgerEntry_Color(t *testing.T) {
	assert.Equal(t, "text-green-500", (&LedgerEntry{Kind: EntryKindEarn}).Color())
	assert.Equal(t, "text-red-500", (&LedgerEntry{Kind: EntryKindSpend}).Color())
	assert.Equal(t, "text-red-500", (&LedgerEntry{Kind: EntryKindAdjustment}).Color())
}

func TestProduct_InStock(t *testing.T) {
	p := &Product{Stock: 3}
	assert.True(t, p.InStock(1))
	assert.True(t, p.InStock(3))
	assert.False(t, p.InStock(4))
}
