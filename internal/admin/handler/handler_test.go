package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"pawport/internal/breed"
	dogmodels "pawport/internal/dog/models"
	dogstore "pawport/internal/dog/store"
	recstore "pawport/internal/record/store"
	"pawport/internal/verification/engine"
	verservice "pawport/internal/verification/service"
	verstore "pawport/internal/verification/store"
	id "pawport/pkg/domain"
	"pawport/pkg/platform/audit"
	auditmemory "pawport/pkg/platform/audit/store/memory"
	auditworker "pawport/pkg/platform/audit/worker"
)

const adminToken = "letmein"

type AdminHandlerSuite struct {
	suite.Suite

	ctx      context.Context
	router   chi.Router
	dogs     *dogstore.InMemoryDogStore
	auditLog *auditmemory.InMemoryStore

	dogID id.DogID
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) SetupTest() {
	s.ctx = context.Background()

	s.dogs = dogstore.NewInMemoryDogStore()
	docs := recstore.NewInMemoryDocumentStore()
	records := recstore.NewInMemoryRecordStore()
	scores := verstore.NewInMemoryScoreStore()
	s.auditLog = auditmemory.NewInMemoryStore()

	s.dogID = id.NewDogID()
	s.Require().NoError(s.dogs.Create(s.ctx, &dogmodels.Dog{
		ID:                s.dogID,
		HandlerID:         id.NewHandlerID(),
		Name:              "Scout",
		Breed:             "Labrador Retriever",
		ServiceRole:       dogmodels.RoleGuide,
		VerificationLevel: dogmodels.LevelYellow,
	}))

	verification := verservice.New(
		engine.New(breed.MustLoadDefault()),
		s.dogs, records, docs, scores,
		verservice.WithAuditPublisher(auditworker.NewDirectPublisher(s.auditLog)),
	)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	New(verification, s.auditLog, string(hash), slog.Default()).Register(s.router)
}

func (s *AdminHandlerSuite) do(method, path, body, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		r.Header.Set("X-Admin-Token", token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func (s *AdminHandlerSuite) TestAuthGate() {
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/admin/review-queue", "", "").Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/admin/review-queue", "", "wrong").Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/admin/review-queue", "", adminToken).Code)
}

func (s *AdminHandlerSuite) TestRecomputeReturnsBundle() {
	w := s.do(http.MethodPost, "/admin/dogs/"+s.dogID.String()+"/recompute", "", adminToken)
	s.Require().Equal(http.StatusOK, w.Code)

	var bundle struct {
		DogID               string `json:"dog_id"`
		RequiresHumanReview bool   `json:"requires_human_review"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &bundle))
	s.Equal(s.dogID.String(), bundle.DogID)
	s.True(bundle.RequiresHumanReview, "a dog without records lands in review")
}

func (s *AdminHandlerSuite) TestGetScores() {
	s.Run("before any computation", func() {
		w := s.do(http.MethodGet, "/admin/dogs/"+s.dogID.String()+"/scores", "", adminToken)
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("after recompute", func() {
		s.Require().Equal(http.StatusOK,
			s.do(http.MethodPost, "/admin/dogs/"+s.dogID.String()+"/recompute", "", adminToken).Code)
		w := s.do(http.MethodGet, "/admin/dogs/"+s.dogID.String()+"/scores", "", adminToken)
		s.Equal(http.StatusOK, w.Code)
	})
}

func (s *AdminHandlerSuite) TestOverrideLevel() {
	body := `{"level":"green","actor":"admin@pawport.dev"}`
	w := s.do(http.MethodPut, "/admin/dogs/"+s.dogID.String()+"/verification-level", body, adminToken)
	s.Require().Equal(http.StatusNoContent, w.Code)

	dog, err := s.dogs.FindByID(s.ctx, s.dogID)
	s.Require().NoError(err)
	s.Equal(dogmodels.LevelGreen, dog.VerificationLevel)

	events, err := s.auditLog.ListByDog(s.ctx, s.dogID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.EventVerificationOverridden, events[0].Type)
}

func (s *AdminHandlerSuite) TestOverrideLevelValidation() {
	s.Run("unknown level", func() {
		body := `{"level":"platinum","actor":"admin@pawport.dev"}`
		w := s.do(http.MethodPut, "/admin/dogs/"+s.dogID.String()+"/verification-level", body, adminToken)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("missing actor", func() {
		body := `{"level":"green"}`
		w := s.do(http.MethodPut, "/admin/dogs/"+s.dogID.String()+"/verification-level", body, adminToken)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *AdminHandlerSuite) TestReviewQueue() {
	s.Require().Equal(http.StatusOK,
		s.do(http.MethodPost, "/admin/dogs/"+s.dogID.String()+"/recompute", "", adminToken).Code)

	w := s.do(http.MethodGet, "/admin/review-queue", "", adminToken)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp struct {
		Queue []struct {
			DogID string `json:"dog_id"`
		} `json:"queue"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Queue, 1)
	s.Equal(s.dogID.String(), resp.Queue[0].DogID)
}

func (s *AdminHandlerSuite) TestAuditTrail() {
	s.Require().Equal(http.StatusOK,
		s.do(http.MethodPost, "/admin/dogs/"+s.dogID.String()+"/recompute", "", adminToken).Code)

	s.Run("per dog", func() {
		w := s.do(http.MethodGet, "/admin/dogs/"+s.dogID.String()+"/audit", "", adminToken)
		s.Require().Equal(http.StatusOK, w.Code)

		var resp struct {
			Events []struct {
				Type string `json:"type"`
			} `json:"events"`
		}
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Require().NotEmpty(resp.Events)
		s.Equal(string(audit.EventScoresComputed), resp.Events[0].Type)
	})

	s.Run("recent with limit", func() {
		w := s.do(http.MethodGet, "/admin/audit/recent?limit=1", "", adminToken)
		s.Require().Equal(http.StatusOK, w.Code)

		var resp struct {
			Events []json.RawMessage `json:"events"`
		}
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Len(resp.Events, 1)
	})
}
