package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacs/tenantkit/pkg/cookie"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func requestWithCookies(t *testing.T, w *httptest.ResponseRecorder) *http.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires a secret", func(t *testing.T) {
		t.Parallel()

		_, err := cookie.New(nil)
		require.ErrorIs(t, err, cookie.ErrNoSecret)

		_, err = cookie.New([]string{""})
		require.ErrorIs(t, err, cookie.ErrNoSecret)
	})

	t.Run("rejects short secrets", func(t *testing.T) {
		t.Parallel()

		_, err := cookie.New([]string{"too-short"})
		require.ErrorIs(t, err, cookie.ErrSecretTooShort)
	})
}

func TestSignedRoundTrip(t *testing.T) {
	t.Parallel()

	mgr, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, mgr.SetSigned(w, "sid", "token-value"))

	got, err := mgr.GetSigned(requestWithCookies(t, w), "sid")
	require.NoError(t, err)
	assert.Equal(t, "token-value", got)
}

func TestSignedTamperDetection(t *testing.T) {
	t.Parallel()

	mgr, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, mgr.SetSigned(w, "sid", "token-value"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		c.Value = strings.Replace(c.Value, "|", "x|", 1)
		r.AddCookie(c)
	}

	_, err = mgr.GetSigned(r, "sid")
	require.Error(t, err)
}

func TestKeyRotation(t *testing.T) {
	t.Parallel()

	oldSecret := "old-secret-old-secret-old-secret-ok"

	oldMgr, err := cookie.New([]string{oldSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, oldMgr.SetSigned(w, "sid", "token-value"))

	rotated, err := cookie.New([]string{testSecret, oldSecret})
	require.NoError(t, err)

	got, err := rotated.GetSigned(requestWithCookies(t, w), "sid")
	require.NoError(t, err)
	assert.Equal(t, "token-value", got)

	withoutOld, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	_, err = withoutOld.GetSigned(requestWithCookies(t, w), "sid")
	require.ErrorIs(t, err, cookie.ErrInvalidSignature)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	mgr, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	mgr.Delete(w, "sid")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	mgr, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = mgr.Get(r, "absent")
	require.ErrorIs(t, err, cookie.ErrCookieNotFound)
}
