package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("dana@example.com"))
	assert.True(t, IsValidEmail("a.b+c@sub.example.co"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("two@@example.com"))
	assert.False(t, IsValidEmail("spaces in@example.com"))
	assert.False(t, IsValidEmail(""))
}

func TestSanitizeIframe(t *testing.T) {
	embed, ok := SanitizeIframe(`<iframe src="https://tour.cubi.casa/x" width="100%"></iframe>`)
	assert.True(t, ok)
	assert.Contains(t, embed, "cubi.casa")

	// Empty is allowed (no embed at all).
	embed, ok = SanitizeIframe("   ")
	assert.True(t, ok)
	assert.Empty(t, embed)

	_, ok = SanitizeIframe(`<script>alert(1)</script>`)
	assert.False(t, ok)

	_, ok = SanitizeIframe(`<iframe src="javascript:alert(1)"></iframe>`)
	assert.False(t, ok)

	_, ok = SanitizeIframe(`<iframe></iframe>`)
	assert.False(t, ok)

	// Trailing content outside the iframe is rejected.
	_, ok = SanitizeIframe(`<iframe src="https://x.test"></iframe><img src=x>`)
	assert.False(t, ok)
}
