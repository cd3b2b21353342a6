package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/inspection-idm/pkg/account"
	"github.com/tendant/inspection-idm/pkg/credential"
	"github.com/tendant/inspection-idm/pkg/memstore"
	"github.com/tendant/inspection-idm/pkg/profile"
	"github.com/tendant/inspection-idm/pkg/provisioning"
	"github.com/tendant/inspection-idm/pkg/session"
	"github.com/tendant/inspection-idm/pkg/signup"
)

type nopSender struct{}

func (nopSender) SendCredentials(context.Context, string, string) error { return nil }

func newRouter(store *memstore.Store) http.Handler {
	codec := credential.NewCodec(credential.WithCost(1, 1024), credential.WithParallelism(1))
	svc := signup.NewSignupService(
		provisioning.NewService(store, codec, nopSender{}),
		signup.WithProfileResolver(profile.NewResolver(store)),
	)
	h := NewHandle(svc)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Route("/companies/{companyId}", h.RegisterCompanyRoutes)
	return r
}

func do(t *testing.T, h http.Handler, path, body string, claims *session.Claims) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if claims != nil {
		req = req.WithContext(session.ContextWithClaims(req.Context(), *claims))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSignUpCompany(t *testing.T) {
	h := newRouter(memstore.New())

	rec := do(t, h, "/signup/company", `{"name":"Acme","email":"a@x.com","password":"Password1234"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created CreatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)

	rec = do(t, h, "/signup/company", `{"name":"Acme","email":"a@x.com","password":"Password1234"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"company already registered"}`, rec.Body.String())

	rec = do(t, h, "/signup/company", `{"name":"Other","email":"a@x.com","password":"Password1234"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"account already exists"}`, rec.Body.String())
}

func TestSignUpInspector(t *testing.T) {
	store := memstore.New()
	h := newRouter(store)

	rec := do(t, h, "/signup/inspector", `{"email":"i@x.com","password":"short"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, "/signup/inspector", `{"email":"i@x.com","password":"Password1234","first_name":"Ann"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	a, err := store.FindByEmail(context.Background(), "i@x.com")
	require.NoError(t, err)
	assert.Equal(t, account.RoleInspector, a.Role)
}

func TestInviteEmployee(t *testing.T) {
	store := memstore.New()
	cityID := store.AddCity("Riga")
	h := newRouter(store)

	rec := do(t, h, "/signup/company", `{"name":"Acme","email":"a@x.com","password":"Password1234"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created CreatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	p, err := profile.NewResolver(store).Resolve(context.Background(), created.ID)
	require.NoError(t, err)
	companyID := *p.CompanyID()

	admin := &session.Claims{AccountID: created.ID, Role: account.RoleAdministrator, CompanyID: companyID}
	path := "/companies/" + strconv.FormatInt(companyID, 10) + "/employees"
	body := `{"email":"m@x.com","first_name":"Mia","city_id":` + strconv.FormatInt(cityID, 10) + `}`

	t.Run("requires a session", func(t *testing.T) {
		rec := do(t, h, path, body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("other company is forbidden", func(t *testing.T) {
		other := *admin
		other.CompanyID = companyID + 1
		rec := do(t, h, path, body, &other)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		rec := do(t, h, path, body, admin)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got struct {
			ID        int64   `json:"id"`
			Role      string  `json:"role"`
			FirstName *string `json:"first_name"`
			Company   struct {
				ID int64 `json:"id"`
			} `json:"company"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "manager", got.Role)
		require.NotNil(t, got.FirstName)
		assert.Equal(t, "Mia", *got.FirstName)
		assert.Equal(t, companyID, got.Company.ID)
		assert.Equal(t, "Riga", got.City.Name)
	})
}
