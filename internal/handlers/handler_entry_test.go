package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
)

type EntryHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (suite *EntryHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	// The mutation-rejection routes never touch the service, so none is wired.
	v1 := suite.router.Group("/api/v1")
	registerEntryRoutes(v1, nil)
}

func (suite *EntryHandlerTestSuite) TestMutationVerbsRejectedAsImmutable() {
	entryID := uuid.NewString()

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		req, _ := http.NewRequest(method, "/api/v1/entries/"+entryID, strings.NewReader(`{"description":"edited"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		suite.router.ServeHTTP(w, req)

		suite.Equal(http.StatusForbidden, w.Code, "method %s must be refused", method)

		var body map[string]string
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
		suite.Equal(apperrors.ErrImmutableEntry.Error(), body["error"])
	}
}

func TestEntryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(EntryHandlerTestSuite))
}
