package publicstatus

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dogmodels "pawport/internal/dog/models"
	recmodels "pawport/internal/record/models"
	id "pawport/pkg/domain"
)

var now = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

func testDog() *dogmodels.Dog {
	return &dogmodels.Dog{
		ID:                id.NewDogID(),
		HandlerID:         id.NewHandlerID(),
		Name:              "Scout",
		Breed:             "Labrador Retriever",
		ServiceRole:       dogmodels.RoleGuide,
		VerificationLevel: dogmodels.LevelGreen,
	}
}

func testHandler() *dogmodels.Handler {
	return &dogmodels.Handler{
		ID:    id.NewHandlerID(),
		Name:  "Jordan Smith",
		Email: "jordan@example.com",
		Phone: "555-0100",
	}
}

func vaccination(expires time.Time) *recmodels.NormalizedRecord {
	return &recmodels.NormalizedRecord{
		ID:             id.NewRecordID(),
		WalletCategory: recmodels.CategoryVaccinations,
		DocumentType:   recmodels.DocTypeRabiesCertificate,
		RecordDate:     now.AddDate(-1, 0, 0),
		ExpirationDate: &expires,
		IsActive:       true,
	}
}

func training(tasks []string) *recmodels.NormalizedRecord {
	r := &recmodels.NormalizedRecord{
		ID:             id.NewRecordID(),
		WalletCategory: recmodels.CategoryTrainingVerification,
		DocumentType:   recmodels.DocTypeServiceTaskAttestation,
		RecordDate:     now.AddDate(0, -6, 0),
		IsActive:       true,
	}
	if tasks != nil {
		r.ExtractedData = map[string]any{"tasks_certified": tasks}
	}
	return r
}

// TestSummaryShape pins the compliance boundary: the public summary may
// carry only string and bool fields, so no score, flag list, or breed
// datum can ever leak through it.
func TestSummaryShape(t *testing.T) {
	typ := reflect.TypeOf(Summary{})
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		kind := field.Type.Kind()
		assert.Contains(t, []reflect.Kind{reflect.String, reflect.Bool}, kind,
			"field %s has kind %s; only strings and bools belong in the public summary", field.Name, kind)
	}
}

func TestProjectBasics(t *testing.T) {
	dog := testDog()
	handler := testHandler()
	summary := Project(dog, handler, nil, now)

	assert.Equal(t, dog.ID.String(), summary.DogID)
	assert.Equal(t, "Scout", summary.DogName)
	assert.Equal(t, "Jordan Smith", summary.HandlerName)
	assert.Equal(t, "green", summary.VerificationLevel)
	assert.Equal(t, "guide", summary.ServiceRole)
	assert.Equal(t, BehaviorCalm, summary.BehaviorStatus)
}

func TestVaccinationStatus(t *testing.T) {
	dog := testDog()
	handler := testHandler()

	t.Run("no vaccinations reads expired", func(t *testing.T) {
		summary := Project(dog, handler, nil, now)
		assert.Equal(t, VaccinationExpired, summary.VaccinationStatus)
	})

	t.Run("far expiration reads current", func(t *testing.T) {
		records := []*recmodels.NormalizedRecord{vaccination(now.AddDate(1, 0, 0))}
		summary := Project(dog, handler, records, now)
		assert.Equal(t, VaccinationCurrent, summary.VaccinationStatus)
	})

	t.Run("expiring within thirty days reads expiring soon", func(t *testing.T) {
		records := []*recmodels.NormalizedRecord{vaccination(now.AddDate(0, 0, 10))}
		summary := Project(dog, handler, records, now)
		assert.Equal(t, VaccinationExpiringSoon, summary.VaccinationStatus)
	})

	t.Run("expiring soon wins over another already expired", func(t *testing.T) {
		records := []*recmodels.NormalizedRecord{
			vaccination(now.AddDate(0, 0, -5)),
			vaccination(now.AddDate(0, 0, 10)),
		}
		summary := Project(dog, handler, records, now)
		assert.Equal(t, VaccinationExpiringSoon, summary.VaccinationStatus)
	})

	t.Run("only expired vaccinations read expired", func(t *testing.T) {
		records := []*recmodels.NormalizedRecord{vaccination(now.AddDate(0, 0, -5))}
		summary := Project(dog, handler, records, now)
		assert.Equal(t, VaccinationExpired, summary.VaccinationStatus)
	})

	t.Run("inactive vaccinations do not count", func(t *testing.T) {
		v := vaccination(now.AddDate(1, 0, 0))
		v.IsActive = false
		summary := Project(dog, handler, []*recmodels.NormalizedRecord{v}, now)
		assert.Equal(t, VaccinationExpired, summary.VaccinationStatus)
	})
}

func TestTasksDescription(t *testing.T) {
	dog := testDog()
	handler := testHandler()

	t.Run("joins the first non-empty certified task list", func(t *testing.T) {
		records := []*recmodels.NormalizedRecord{
			training(nil),
			training([]string{"PTSD alert", "Grounding techniques"}),
		}
		summary := Project(dog, handler, records, now)
		assert.Equal(t, "PTSD alert, Grounding techniques", summary.TasksDescription)
	})

	t.Run("falls back to generic description", func(t *testing.T) {
		summary := Project(dog, handler, []*recmodels.NormalizedRecord{training(nil)}, now)
		assert.Equal(t, "Service dog tasks", summary.TasksDescription)
	})
}

func TestVerificationBooleans(t *testing.T) {
	dog := testDog()
	handler := testHandler()

	tr := training(nil)
	tr.TrainerVerified = true
	vac := vaccination(now.AddDate(1, 0, 0))
	vac.VetVerified = true
	pat := &recmodels.NormalizedRecord{
		ID:             id.NewRecordID(),
		WalletCategory: recmodels.CategoryTrainingVerification,
		DocumentType:   recmodels.DocTypePublicAccessTest,
		RecordDate:     now.AddDate(0, -2, 0),
		IsActive:       true,
	}

	summary := Project(dog, handler, []*recmodels.NormalizedRecord{tr, vac, pat}, now)
	require.True(t, summary.TrainingVerified)
	require.True(t, summary.VetVerified)
	require.True(t, summary.PublicAccessTestPassed)

	// Handler contact details never surface in the summary.
	raw := reflect.ValueOf(summary)
	for i := 0; i < raw.NumField(); i++ {
		if raw.Field(i).Kind() == reflect.String {
			assert.NotEqual(t, handler.Email, raw.Field(i).String())
			assert.NotEqual(t, handler.Phone, raw.Field(i).String())
		}
	}
}
