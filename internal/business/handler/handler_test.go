package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawport/internal/business/service"
	dogmodels "pawport/internal/dog/models"
	dogstore "pawport/internal/dog/store"
	"pawport/internal/platform/middleware"
	recstore "pawport/internal/record/store"
	id "pawport/pkg/domain"
)

const testSigningKey = "test-signing-key"

func signToken(t *testing.T, subject, audience string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": subject,
		"aud": audience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return token
}

func setup(t *testing.T) (chi.Router, id.DogID) {
	t.Helper()
	ctx := context.Background()

	dogs := dogstore.NewInMemoryDogStore()
	handlers := dogstore.NewInMemoryHandlerStore()
	records := recstore.NewInMemoryRecordStore()

	handlerID := id.NewHandlerID()
	require.NoError(t, handlers.Create(ctx, &dogmodels.Handler{
		ID: handlerID, Name: "Jordan Smith", Email: "jordan@example.com",
	}))
	dogID := id.NewDogID()
	require.NoError(t, dogs.Create(ctx, &dogmodels.Dog{
		ID:                dogID,
		HandlerID:         handlerID,
		Name:              "Scout",
		Breed:             "Labrador Retriever",
		ServiceRole:       dogmodels.RoleGuide,
		VerificationLevel: dogmodels.LevelGreen,
	}))

	scans := service.New(dogs, handlers, records)
	router := chi.NewRouter()
	New(scans, middleware.NewVerifier(testSigningKey), slog.Default()).Register(router)
	return router, dogID
}

func TestScanEndpoint(t *testing.T) {
	router, dogID := setup(t)
	token := signToken(t, id.NewOrgID().String(), middleware.AudienceBusiness)

	scan := func(path, token string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		return w
	}

	t.Run("returns the public summary", func(t *testing.T) {
		w := scan("/scan/dogs/"+dogID.String(), token)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Scout", body["dog_name"])
		assert.Equal(t, "Jordan Smith", body["handler_name"])
		assert.Equal(t, "green", body["verification_level"])

		// The internal bundle's fields must never appear in a scan body.
		for key := range body {
			assert.NotContains(t, key, "score")
			assert.NotContains(t, key, "flag")
		}
	})

	t.Run("requires a business token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, scan("/scan/dogs/"+dogID.String(), "").Code)

		handlerToken := signToken(t, id.NewHandlerID().String(), middleware.AudienceHandler)
		assert.Equal(t, http.StatusUnauthorized, scan("/scan/dogs/"+dogID.String(), handlerToken).Code)
	})

	t.Run("unknown dog is not found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, scan("/scan/dogs/"+id.NewDogID().String(), token).Code)
	})

	t.Run("malformed dog id is a bad request", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, scan("/scan/dogs/not-a-uuid", token).Code)
	})
}
