package http

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/paylinkr/gatekeeper/adapters/store"
	"github.com/paylinkr/gatekeeper/adapters/tokenizer"
	"github.com/paylinkr/gatekeeper/internal/stacks"
	"github.com/paylinkr/gatekeeper/pkg/logger"
	"github.com/paylinkr/gatekeeper/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// wallet is a test key pair with its derived mainnet address.
type wallet struct {
	key     *ecdsa.PrivateKey
	pubKey  string
	address string
}

func newWallet(t *testing.T) *wallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	compressed := crypto.CompressPubkey(&key.PublicKey)
	address, err := stacks.AddressFromPublicKey(compressed, stacks.NetworkMainnet)
	require.NoError(t, err)

	return &wallet{
		key:     key,
		pubKey:  hex.EncodeToString(compressed),
		address: address,
	}
}

func (w *wallet) sign(t *testing.T, message string) string {
	t.Helper()
	sig, err := crypto.Sign(stacks.MessageHash(message), w.key)
	require.NoError(t, err)
	return hex.EncodeToString(sig)
}

func (w *wallet) credentials(t *testing.T) service.Credentials {
	message := "Sign this message to authenticate with Paylinkr at app.paylinkr.io (nonce) at " +
		time.Now().UTC().Format(time.RFC3339)
	return service.Credentials{
		WalletAddress: w.address,
		PublicKey:     w.pubKey,
		SignedMessage: w.sign(t, message),
		Message:       message,
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	require.NoError(t, store.CreateSchema(context.Background(), db))

	tk, err := tokenizer.NewJWTTokenizer("test-secret")
	require.NoError(t, err)

	log := logger.New("error", true)
	identities := store.NewBunIdentityStore(db)
	sessions := store.NewMemorySessionStore()

	auth := service.NewAuthService(stacks.MessageVerifier{}, identities, sessions, tk, nil, log)
	accounts := service.NewAccountService(identities)
	paytags := service.NewPayTagService(store.NewBunPayTagStore(db), identities, nil, log)

	return SetupRouter(auth, accounts, paytags, RouterConfig{
		CookieSecure: false,
		SessionTTL:   time.Hour,
	})
}

func doJSON(router *gin.Engine, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == SessionCookieName {
			return cookie
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func signIn(t *testing.T, router *gin.Engine, w *wallet) *http.Cookie {
	t.Helper()
	resp := doJSON(router, http.MethodPost, "/auth/signin", w.credentials(t), nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return sessionCookie(t, resp)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, w)
	require.Equal(t, false, body["success"])
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "missing error object: %s", w.Body.String())
	code, _ := errObj["code"].(string)
	return code
}

func TestSignInEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w := newWallet(t)

	resp := doJSON(router, http.MethodPost, "/auth/signin", w.credentials(t), nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, w.address, data["walletAddress"])
	assert.Equal(t, "personal", data["accountType"])

	cookie := sessionCookie(t, resp)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
}

func TestSignInTamperedSignature(t *testing.T) {
	router := newTestRouter(t)
	w := newWallet(t)

	creds := w.credentials(t)
	creds.Message = creds.Message + " tampered"

	resp := doJSON(router, http.MethodPost, "/auth/signin", creds, nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "CredentialsSignin", errorCode(t, resp))

	body := decodeBody(t, resp)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t,
		"Invalid message signature. The signature verification failed. Please try again.",
		errObj["message"])
}

func TestSignInWrongAddress(t *testing.T) {
	router := newTestRouter(t)
	w := newWallet(t)
	other := newWallet(t)

	creds := w.credentials(t)
	creds.WalletAddress = other.address

	resp := doJSON(router, http.MethodPost, "/auth/signin", creds, nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "CredentialsSignin", errorCode(t, resp))
}

func TestSignInMissingField(t *testing.T) {
	router := newTestRouter(t)
	w := newWallet(t)

	creds := w.credentials(t)
	creds.SignedMessage = ""

	resp := doJSON(router, http.MethodPost, "/auth/signin", creds, nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "CredentialsSignin", errorCode(t, resp))
}

func TestSignInMalformedBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewBufferString("{broken"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "InvalidInput", errorCode(t, resp))
}

func TestChallengeEndpoint(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(router, http.MethodGet, "/auth/challenge?hostname=app.paylinkr.io", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Contains(t, data["message"], "Sign this message to authenticate with Paylinkr at app.paylinkr.io")
	assert.NotEmpty(t, data["nonce"])
}

func TestProtectedRouteWithoutSession(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(router, http.MethodGet, "/api/user", nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "SessionRequired", errorCode(t, resp))
}

func TestProtectedRouteRedirectsBrowsers(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/auth/signin?callbackUrl=%2Fapi%2Fuser", resp.Header().Get("Location"))
}

func TestSessionLifecycle(t *testing.T) {
	router := newTestRouter(t)
	w := newWallet(t)

	cookie := signIn(t, router, w)

	// The cookie authenticates the protected route.
	resp := doJSON(router, http.MethodGet, "/api/user", nil, cookie)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	data := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, w.address, data["walletAddress"])

	// Sign out, then the same cookie is rejected.
	resp = doJSON(router, http.MethodPost, "/auth/signout", nil, cookie)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(router, http.MethodGet, "/api/user", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "SessionRequired", errorCode(t, resp))
}

func TestBearerTokenAuthentication(t *testing.T) {
	router := newTestRouter(t)
	w := newWallet(t)

	resp := doJSON(router, http.MethodPost, "/auth/signin", w.credentials(t), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	token := decodeBody(t, resp)["token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSignOutEverywhereEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w := newWallet(t)

	cookie1 := signIn(t, router, w)
	cookie2 := signIn(t, router, w)

	resp := doJSON(router, http.MethodPost, "/auth/signout/all", nil, cookie1)
	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["revoked"])

	for _, cookie := range []*http.Cookie{cookie1, cookie2} {
		resp = doJSON(router, http.MethodGet, "/api/user", nil, cookie)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	}
}

func TestUpdateProfileEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w := newWallet(t)
	cookie := signIn(t, router, w)

	resp := doJSON(router, http.MethodPut, "/api/user/profile", gin.H{
		"email":    "me@example.com",
		"username": "satoshi",
	}, cookie)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "me@example.com", data["email"])
}

func TestMerchantFlow(t *testing.T) {
	router := newTestRouter(t)
	w := newWallet(t)
	cookie := signIn(t, router, w)

	// Personal accounts are kept out of merchant routes.
	resp := doJSON(router, http.MethodGet, "/api/user/merchant/webhooks", nil, cookie)
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "AccessDenied", errorCode(t, resp))

	// The merchant probe returns null rather than an error.
	resp = doJSON(router, http.MethodGet, "/api/user/merchant", nil, cookie)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, decodeBody(t, resp)["data"])

	// Upgrade, then merchant routes open up.
	resp = doJSON(router, http.MethodPost, "/api/user/merchant", gin.H{
		"businessName":  "Acme",
		"businessEmail": "ops@acme.example",
	}, cookie)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = doJSON(router, http.MethodPost, "/api/user/merchant/webhooks", gin.H{
		"url":    "https://acme.example/hooks",
		"events": []string{"payment.completed"},
	}, cookie)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	hook := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.NotEmpty(t, hook["id"])

	resp = doJSON(router, http.MethodGet, "/api/user/merchant/webhooks", nil, cookie)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(router, http.MethodPost, "/api/user/merchant/keys", gin.H{
		"name": "checkout",
	}, cookie)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	key := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Contains(t, key["key"], "plk_")
	assert.NotEmpty(t, key["secret"])
}

func TestPayTagFlow(t *testing.T) {
	router := newTestRouter(t)
	creator := newWallet(t)
	payer := newWallet(t)

	creatorCookie := signIn(t, router, creator)
	payerCookie := signIn(t, router, payer)

	// Create a payment request.
	resp := doJSON(router, http.MethodPost, "/api/tags", gin.H{
		"amount":      "12.5",
		"description": "coffee",
	}, creatorCookie)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	tag := decodeBody(t, resp)["data"].(map[string]interface{})
	tagID := tag["tagId"].(string)
	assert.Equal(t, "pending", tag["status"])

	// The payment page resolves the tag without a session.
	resp = doJSON(router, http.MethodGet, "/api/tags/"+tagID, nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	// The creator sees it in their list.
	resp = doJSON(router, http.MethodGet, "/api/tags?status=pending", nil, creatorCookie)
	require.Equal(t, http.StatusOK, resp.Code)
	listData := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), listData["pagination"].(map[string]interface{})["total"])

	// Another authenticated wallet fulfills it.
	resp = doJSON(router, http.MethodPost, "/api/tags/"+tagID+"/fulfill", gin.H{
		"txId": "0xabc",
	}, payerCookie)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	paid := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "paid", paid["status"])
	assert.Equal(t, payer.address, paid["paidByWalletAddress"])

	// Fulfilling again is rejected.
	resp = doJSON(router, http.MethodPost, "/api/tags/"+tagID+"/fulfill", gin.H{
		"txId": "0xdef",
	}, payerCookie)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "InvalidInput", errorCode(t, resp))
}

func TestPayTagCancelEndpoint(t *testing.T) {
	router := newTestRouter(t)
	creator := newWallet(t)
	other := newWallet(t)

	creatorCookie := signIn(t, router, creator)
	otherCookie := signIn(t, router, other)

	resp := doJSON(router, http.MethodPost, "/api/tags", gin.H{"amount": "5"}, creatorCookie)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	tagID := decodeBody(t, resp)["data"].(map[string]interface{})["tagId"].(string)

	// Only the creator can cancel.
	resp = doJSON(router, http.MethodPost, "/api/tags/"+tagID+"/cancel", nil, otherCookie)
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "AccessDenied", errorCode(t, resp))

	resp = doJSON(router, http.MethodPost, "/api/tags/"+tagID+"/cancel", nil, creatorCookie)
	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "canceled", data["status"])
}

func TestPayTagGetMissing(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(router, http.MethodGet, "/api/tags/nope", nil, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NotFound", errorCode(t, resp))
}
