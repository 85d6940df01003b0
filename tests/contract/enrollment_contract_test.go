package contract_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/handler"
)

type stubEnrollmentService struct {
	response dto.EnrollmentSubmissionResponse
}

func (s stubEnrollmentService) Submit(context.Context, dto.EnrollmentSubmissionRequest) (dto.EnrollmentSubmissionResponse, error) {
	return s.response, nil
}

func (s stubEnrollmentService) LookupFamilyByEmail(context.Context, string) (dto.FamilyLookupResponse, error) {
	return dto.FamilyLookupResponse{}, nil
}

func (s stubEnrollmentService) GetFamily(context.Context, uuid.UUID) (dto.FamilyResponse, error) {
	return dto.FamilyResponse{}, nil
}

func (s stubEnrollmentService) CurrentYear(context.Context) (dto.EnrollmentYearResponse, error) {
	return dto.EnrollmentYearResponse{}, nil
}

func (s stubEnrollmentService) ListClasses(context.Context, *uint) (dto.EnrollmentClassCatalog, error) {
	return dto.EnrollmentClassCatalog{}, nil
}

func (s stubEnrollmentService) SuggestedEnrollments(context.Context, uuid.UUID) (dto.SuggestedEnrollmentsResponse, error) {
	return dto.SuggestedEnrollmentsResponse{}, nil
}

func TestEnrollmentSubmissionContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "enrollment_submission.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	stub := stubEnrollmentService{response: dto.EnrollmentSubmissionResponse{
		Success:       true,
		FamilyID:      uuid.New(),
		EnrollmentIDs: []uuid.UUID{uuid.New(), uuid.New()},
		Message:       "enrollment recorded",
	}}

	app := fiber.New()
	handler.NewEnrollmentHandler(stub, zerolog.Nop()).Register(app.Group("/api/enrollment"))

	payload := dto.EnrollmentSubmissionRequest{
		FamilyInfo:     dto.FamilyInfo{FamilyName: "Pham Family"},
		AcademicYearID: 1,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/enrollment/submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NoError(t, schema.Validate(decoded))
}
