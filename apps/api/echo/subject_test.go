package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schoolmate/backend/core/subject"
)

func Test_subjectApi(t *testing.T) {
	env := setup(t)
	token := env.staffToken(t)
	ctx := context.Background()

	gradeErr := marchallObj(t, map[string]string{"grade": "grade must be between 6 and 13"})
	notFound := marchallObj(t, httpErr{Error: "subject not found"})

	runHTTPTests(t, env.app, []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/subject/add", body: []byte(`{"name": "Art", "grade": 7}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Grade too low", method: http.MethodPost, path: "/subject/add", token: token, body: []byte(`{"name": "Art", "grade": 5}`), wantCode: http.StatusBadRequest, wantData: gradeErr},
		{name: "Grade too high", method: http.MethodPost, path: "/subject/add", token: token, body: []byte(`{"name": "Art", "grade": 14}`), wantCode: http.StatusBadRequest, wantData: gradeErr},
		{
			name: "Code is not an input", method: http.MethodPost, path: "/subject/add", token: token, body: []byte(`{"name": "Art", "grade": 7, "code": "SM999"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"code": "unknown field"}),
		},
	})

	create := func(name string, grade int) subject.Offering {
		off, err := env.subjectSvc.Create(ctx, subject.NewOffering{Name: name, Grade: grade})
		require.NoError(t, err)
		return off
	}
	physics := create("Physics", 9)
	art := create("Art", 7)

	runHTTPTests(t, env.app, []httpTest{
		{name: "Get all", path: "/subject/all", token: token, wantCode: http.StatusOK, wantData: marchallList(t, physics, art)},
		{name: "grade", path: "/subject/all?grade=7", token: token, wantCode: http.StatusOK, wantData: marchallList(t, art)},
		{name: "search code", path: "/subject/all?search=sm001", token: token, wantCode: http.StatusOK, wantData: marchallList(t, physics)},
		{name: "retrieve", path: "/subject/" + art.ID, token: token, wantCode: http.StatusOK, wantData: marchallObj(t, art)},
		{name: "retrieve unknown", path: "/subject/unknown", token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{
			name: "update grade bounds", method: http.MethodPut, path: "/subject/update/" + art.ID, token: token,
			body: []byte(`{"grade": 14}`), wantCode: http.StatusBadRequest, wantData: gradeErr,
		},
		{
			name: "update unknown", method: http.MethodPut, path: "/subject/update/unknown", token: token,
			body: []byte(`{"grade": 8}`), wantCode: http.StatusNotFound, wantData: notFound,
		},
		{name: "delete unknown", method: http.MethodDelete, path: "/subject/delete/unknown", token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{
			name: "delete", method: http.MethodDelete, path: "/subject/delete/" + physics.ID, token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, MessageResponse{Message: "subject deleted"}),
		},
		{name: "deleted", path: "/subject/" + physics.ID, token: token, wantCode: http.StatusNotFound, wantData: notFound},
	})

	t.Run("update keeps the code", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/subject/update/"+art.ID, token, []byte(`{"name": "Fine Art", "code": "SM999"}`))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got, err := env.subjectSvc.GetByID(ctx, art.ID)
		require.NoError(t, err)
		require.Equal(t, "Fine Art", got.Name)
		require.Equal(t, "SM002", got.Code)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, got)}, rec)
	})

	t.Run("codes are not reused", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/subject/add", token, []byte(`{"name": "Chemistry", "grade": 10}`))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), `"code":"SM003"`)
	})
}
