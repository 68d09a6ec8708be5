package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain"
)

func TestIssueAndParse(t *testing.T) {
	tk, err := NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	s, exp, err := tk.Issue(&domain.User{ID: "u-owner", Role: domain.RoleOwner})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := tk.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, "u-owner", c.Subject)
	assert.Equal(t, domain.RoleOwner, c.Role)
}

func TestParseRejects(t *testing.T) {
	tk, _ := NewTokens("test-secret", time.Hour)
	other, _ := NewTokens("other-secret", time.Hour)

	s, _, err := other.Issue(&domain.User{ID: "u1", Role: domain.RoleAdmin})
	require.NoError(t, err)
	_, err = tk.Parse(s)
	assert.Error(t, err, "foreign signature")

	expired, _ := NewTokens("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	s, _, err = expired.Issue(&domain.User{ID: "u1", Role: domain.RoleAdmin})
	require.NoError(t, err)
	_, err = tk.Parse(s)
	assert.Error(t, err, "expired")

	_, err = tk.Parse("not-a-token")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}
