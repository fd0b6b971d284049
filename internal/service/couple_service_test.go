package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"ieum/internal/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoupleService_InviteAndJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCoupleService(f.d)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")

	inv, err := svc.CreateInvite(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, inv.InviteCode, 6)
	for _, r := range inv.InviteCode {
		assert.True(t, strings.ContainsRune(inviteAlphabet, r), "unexpected %q", r)
	}
	assert.Equal(t, f.now.Add(24*time.Hour), inv.ExpiresAt)

	// a second invite is refused while the first couple exists
	_, err = svc.CreateInvite(ctx, a.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	resp, err := svc.Join(ctx, b.ID, " "+strings.ToLower(inv.InviteCode)+" ")
	require.NoError(t, err)
	require.NotNil(t, resp.Partner)
	assert.Equal(t, a.ID, resp.Partner.ID)

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		u, err := f.d.Users.GetUserByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, u.CoupleID)
		assert.Equal(t, resp.ID, *u.CoupleID)
	}

	me, err := svc.Me(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, me.ID)
	assert.Equal(t, b.ID, me.Partner.ID)
}

func TestCoupleService_JoinErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCoupleService(f.d)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")

	inv, err := svc.CreateInvite(ctx, a.ID)
	require.NoError(t, err)

	_, err = svc.Join(ctx, a.ID, inv.InviteCode)
	assert.True(t, apperr.Is(err, apperr.KindConflict), "inviter already belongs to the pending couple")

	_, err = svc.Join(ctx, b.ID, "ZZZZZZ")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.EqualError(t, err, "Invalid invite code")

	f.now = f.now.Add(25 * time.Hour)
	_, err = svc.Join(ctx, b.ID, inv.InviteCode)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.EqualError(t, err, "Invite code has expired")
}

func TestCoupleService_SelfJoinAfterUnlink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCoupleService(f.d)
	a := f.user(t, "a@example.com")

	inv, err := svc.CreateInvite(ctx, a.ID)
	require.NoError(t, err)
	// the inviter lost the link without the couple going away
	require.NoError(t, f.d.Users.SetCouple(ctx, a.ID, nil))

	_, err = svc.Join(ctx, a.ID, inv.InviteCode)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.EqualError(t, err, "Cannot join your own couple")
}

func TestCoupleService_UniqueCodeRetries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCoupleService(f.d)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")

	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	svc.codeGen = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	first, err := svc.CreateInvite(ctx, a.ID)
	require.NoError(t, err)
	second, err := svc.CreateInvite(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first.InviteCode)
	assert.Equal(t, "BBBBBB", second.InviteCode)
}

func TestCoupleService_AnniversaryAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCoupleService(f.d)
	a, b, coupleID := f.pair(t)

	resp, err := svc.UpdateAnniversary(ctx, a.ID, UpdateCoupleRequest{Anniversary: strPtr("2023-02-14")})
	require.NoError(t, err)
	require.NotNil(t, resp.Anniversary)
	assert.Equal(t, "2023-02-14", *resp.Anniversary)
	assert.Equal(t, []string{AreaAnniversary}, f.bc.areas())

	_, err = svc.UpdateAnniversary(ctx, a.ID, UpdateCoupleRequest{Anniversary: strPtr("14/02/2023")})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	ok, err := svc.IsMember(ctx, coupleID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Delete(ctx, b.ID))

	_, err = svc.Me(ctx, a.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	ok, err = svc.IsMember(ctx, coupleID, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// both are free to pair again
	_, err = svc.CreateInvite(ctx, a.ID)
	assert.NoError(t, err)
}

func TestCoupleService_SharedKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCoupleService(f.d)
	a, b, _ := f.pair(t)

	mine, err := svc.MySharedKey(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, mine.HasSharedKey)

	_, err = svc.SetMySharedKey(ctx, a.ID, "key-for-a")
	require.NoError(t, err)
	_, err = svc.SetPartnerSharedKey(ctx, a.ID, "key-for-b")
	require.NoError(t, err)

	mine, err = svc.MySharedKey(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, mine.HasSharedKey)
	assert.Equal(t, "key-for-b", *mine.EncryptedSharedKey)

	mine, err = svc.MySharedKey(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "key-for-a", *mine.EncryptedSharedKey)
}
