package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestCapacity(t *testing.T) {
	c := Limited(2)
	assert.False(t, c.IsUnlimited())
	assert.True(t, c.HasRoomFor(0))
	assert.True(t, c.HasRoomFor(1))
	assert.False(t, c.HasRoomFor(2))
	// grandfathered attendees above a lowered limit still block joins
	assert.False(t, c.HasRoomFor(30))

	u := Unlimited()
	assert.True(t, u.IsUnlimited())
	assert.True(t, u.HasRoomFor(1_000_000))
	assert.Equal(t, int64(-1), u.Int64())

	var zero Capacity
	assert.True(t, zero.IsUnlimited())
}

func TestCapacityFromInt(t *testing.T) {
	c, err := CapacityFromInt(-1)
	require.NoError(t, err)
	assert.True(t, c.IsUnlimited())

	c, err = CapacityFromInt(50)
	require.NoError(t, err)
	n, limited := c.Limit()
	assert.True(t, limited)
	assert.Equal(t, uint32(50), n)

	for _, bad := range []int64{0, -2, 1 << 40} {
		_, err := CapacityFromInt(bad)
		assert.Error(t, err, "capacity %d", bad)
	}
}

func TestCapacityJSON(t *testing.T) {
	ev := Event{Title: "Hack night", Capacity: Limited(10)}
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"capacity":10`)

	var decoded struct {
		Capacity Capacity `json:"capacity"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"capacity":-1}`), &decoded))
	assert.True(t, decoded.Capacity.IsUnlimited())

	assert.Error(t, json.Unmarshal([]byte(`{"capacity":0}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"capacity":"ten"}`), &decoded))
}

func TestIdentityMatches(t *testing.T) {
	tests := []struct {
		name string
		a, b Membership
		want bool
	}{
		{"same account", Membership{UserID: int64Ptr(7)}, Membership{UserID: int64Ptr(7)}, true},
		{"same student id", Membership{StudentID: "S100"}, Membership{StudentID: "S100", Email: "x@uni.edu"}, true},
		{"email case-insensitive", Membership{Email: "Ada@Uni.edu "}, Membership{Email: "ada@uni.edu"}, true},
		{"empty values never match", Membership{}, Membership{}, false},
		{"different people", Membership{StudentID: "S1", Email: "a@uni.edu"}, Membership{StudentID: "S2", Email: "b@uni.edu"}, false},
		{"different accounts sharing student id", Membership{UserID: int64Ptr(1), StudentID: "S9"}, Membership{UserID: int64Ptr(2), StudentID: "S9"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IdentityMatches(&tt.a, &tt.b))
		})
	}
}

func TestMembershipPatchApply(t *testing.T) {
	role := "Captain"
	title := "Founder"
	m := Membership{Role: DefaultMemberRole, Status: MembershipPending, ClubID: 3}
	MembershipPatch{Role: &role, CustomTitle: &title}.Apply(&m)

	assert.Equal(t, "Captain", m.Role)
	assert.Equal(t, "Founder", *m.CustomTitle)
	assert.Equal(t, MembershipPending, m.Status)
	assert.EqualValues(t, 3, m.ClubID)
	assert.True(t, MembershipPatch{}.Empty())
}

func TestJoinYear(t *testing.T) {
	assert.Equal(t, "2026", JoinYear(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)))
}

func TestParseMessageStatus(t *testing.T) {
	st, err := ParseMessageStatus("replied")
	require.NoError(t, err)
	assert.Equal(t, MessageResolved, st)

	st, err = ParseMessageStatus("IN_PROGRESS")
	require.NoError(t, err)
	assert.Equal(t, MessageInProgress, st)

	_, err = ParseMessageStatus("archived")
	assert.Error(t, err)
}

func TestMessageStatusIsBackwardFrom(t *testing.T) {
	assert.False(t, MessageRead.IsBackwardFrom(MessageSent))
	assert.True(t, MessageSent.IsBackwardFrom(MessageResolved))
	assert.False(t, MessageClosed.IsBackwardFrom(MessageInProgress))
	assert.True(t, MessageInProgress.IsBackwardFrom(MessageClosed))
	assert.False(t, MessageClosed.IsBackwardFrom(MessageClosed))
}

func TestPrincipalIsAdminOf(t *testing.T) {
	super := &Principal{Role: RoleSuperAdmin}
	admin := &Principal{Role: RoleClubAdmin, ClubID: int64Ptr(5)}
	orphan := &Principal{Role: RoleClubAdmin}
	user := &Principal{Role: RoleUser, ClubID: int64Ptr(5)}

	assert.True(t, super.IsAdminOf(9))
	assert.True(t, admin.IsAdminOf(5))
	assert.False(t, admin.IsAdminOf(9))
	assert.False(t, orphan.IsAdminOf(5))
	assert.False(t, user.IsAdminOf(5))

	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.IsAdminOf(5))
}
