package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreshare/internal/validation"
)

func TestCreateFamily(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice@example.com")

	fam, err := f.familySvc.CreateFamily("  The Smiths ", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Smiths", fam.Name)
	assert.Len(t, fam.InviteCode, inviteCodeLength)
	for _, r := range fam.InviteCode {
		assert.True(t, strings.ContainsRune(inviteCodeAlphabet, r), "unexpected rune %q in invite code", r)
	}

	ok, err := f.guard.Authorize(alice.ID, fam.ID)
	require.NoError(t, err)
	assert.True(t, ok, "creator is enrolled as a member")

	_, err = f.familySvc.CreateFamily("   ", alice.ID)
	assert.True(t, validation.IsValidationError(err))
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	fam := f.family(t, alice)

	ok, err := f.guard.Authorize(bob.ID, fam.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.guard.Authorize(alice.ID, fam.ID+1000)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, f.guard.RequireMember(bob.ID, fam.ID), ErrAccessDenied)
	assert.ErrorIs(t, f.guard.RequireMember(bob.ID, fam.ID+1000), ErrAccessDenied)

	_, err = f.familySvc.RedeemInvite(fam.InviteCode, bob.ID)
	require.NoError(t, err)
	assert.NoError(t, f.guard.RequireMember(bob.ID, fam.ID))
}

func TestRedeemInvite(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	fam := f.family(t, alice)

	joined, err := f.familySvc.RedeemInvite(strings.ToLower(fam.InviteCode), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, fam.ID, joined.ID)

	_, err = f.familySvc.RedeemInvite(fam.InviteCode, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = f.familySvc.RedeemInvite("ZZZZZZZZ", bob.ID)
	assert.ErrorIs(t, err, ErrInvalidInviteCode)

	_, err = f.familySvc.RedeemInvite("", bob.ID)
	assert.True(t, validation.IsValidationError(err))

	families, err := f.familySvc.ListFamiliesFor(bob.ID)
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, fam.ID, families[0].ID)
}

func TestUniqueInviteCodes(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice@example.com")

	codes := []string{"AAAA1111", "AAAA1111", "BBBB2222"}
	next := 0
	f.familySvc.newInviteCode = func() string {
		code := codes[next]
		next++
		return code
	}

	first, err := f.familySvc.CreateFamily("First", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAAA1111", first.InviteCode)

	f.familySvc.uniqueCodes = true
	second, err := f.familySvc.CreateFamily("Second", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "BBBB2222", second.InviteCode)
}

func TestGetFamilyMembers(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	eve := f.user(t, "eve@example.com")
	fam := f.family(t, alice, bob)

	task := f.task(t, alice.ID, fam.ID, 2)
	require.NoError(t, f.tasks.AssignTask(alice.ID, task.ID, bob.ID))

	members, err := f.familySvc.GetFamilyMembers(alice.ID, fam.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, bob.ID, members[1].UserID)
	assert.Equal(t, 1, members[1].ActiveTasks)

	_, err = f.familySvc.GetFamilyMembers(eve.ID, fam.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
