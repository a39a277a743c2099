package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/poofware/application-service/internal/controllers"
	"github.com/poofware/application-service/internal/repositories"
	"github.com/poofware/application-service/internal/routes"
	"github.com/poofware/application-service/internal/services"
	"github.com/poofware/application-service/internal/validation"
)

const validYAML = `
firstName: Jane
lastName: Doe
dateOfBirth: 1990-04-02
address:
  street: 1 Main St
  city: Austin
  state: TX
  zipCode: "78701"
vehicles:
  - vin: 1HGCM82633A004352
    make: Honda
    model: Accord
    year: 2015
`

const incompleteYAML = `
firstName: Jane
vehicles: []
`

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := repositories.NewMemoryDocumentStore()
	repo := repositories.NewApplicationRepository(store, "http://localhost:3000/resume")
	svc := services.NewApplicationService(repo, store, validation.NewRuleset(nil), services.FixedQuoter(321), nil)
	ctrl := controllers.NewApplicationController(svc)

	r := mux.NewRouter()
	r.HandleFunc(routes.Applications, ctrl.CreateApplicationHandler).Methods(http.MethodPost)
	r.HandleFunc(routes.Applications, ctrl.GetApplicationHandler).Methods(http.MethodGet)
	r.HandleFunc(routes.Applications, ctrl.UpdateApplicationHandler).Methods(http.MethodPut)
	r.HandleFunc(routes.ApplicationsValidate, ctrl.ValidateApplicationHandler).Methods(http.MethodPost)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	out, err := execute(t, "check", "-f", writeFile(t, "app.yaml", validYAML))
	require.NoError(t, err)
	require.Contains(t, out, "is complete")

	out, err = execute(t, "check", "-f", writeFile(t, "app.yaml", incompleteYAML))
	require.Error(t, err)
	require.Contains(t, out, "lastName: "+validation.MsgLastNameRequired)
	require.Contains(t, out, "vehicles: "+validation.MsgNoVehicles)
}

func TestCheckCommandReadsJSON(t *testing.T) {
	content := `{"firstName":"Jane","lastName":"Doe","dateOfBirth":"1990-04-02T00:00:00.000Z",
"address":{"street":"1 Main St","city":"Austin","state":"TX","zipCode":"78701"},
"vehicles":[{"vin":"X","make":"Honda","model":"Accord","year":"2015-01-01T00:00:00.000Z"}]}`
	_, err := execute(t, "check", "-f", writeFile(t, "app.json", content))
	require.NoError(t, err)
}

func TestCheckCommandRejectsBadValues(t *testing.T) {
	_, err := execute(t, "check", "-f", writeFile(t, "app.yaml", "dateOfBirth: someday\n"))
	require.ErrorContains(t, err, "dateOfBirth")

	_, err = execute(t, "check")
	require.ErrorContains(t, err, "application file is required")
}

func TestStartGetSubmit(t *testing.T) {
	srv := startServer(t)

	out, err := execute(t, "--server", srv.URL, "start", "-f", writeFile(t, "start.yaml", incompleteYAML))
	require.NoError(t, err)
	require.Contains(t, out, "Resume at: http://localhost:3000/resume?id=")

	var id string
	for _, line := range bytes.Split([]byte(out), []byte("\n")) {
		if bytes.HasPrefix(line, []byte("Resume at: ")) {
			id, err = resolveID(string(bytes.TrimPrefix(line, []byte("Resume at: "))))
			require.NoError(t, err)
		}
	}
	require.NotEmpty(t, id)

	out, err = execute(t, "--server", srv.URL, "get", id)
	require.NoError(t, err)
	require.Contains(t, out, "firstName: Jane")

	out, err = execute(t, "--server", srv.URL, "submit", id)
	require.Error(t, err)
	require.Contains(t, out, "Application is incomplete")

	_, err = execute(t, "--server", srv.URL, "update", id, "-f", writeFile(t, "full.yaml", validYAML))
	require.NoError(t, err)

	out, err = execute(t, "--server", srv.URL, "submit", "http://localhost:3000/resume?id="+id)
	require.NoError(t, err)
	require.Contains(t, out, "$321")

	out, err = execute(t, "--server", srv.URL, "get", "--json", id)
	require.NoError(t, err)
	require.Contains(t, out, `"lastName": "Doe"`)
}

func TestGetUnknownApplication(t *testing.T) {
	srv := startServer(t)
	_, err := execute(t, "--server", srv.URL, "get", "ghost")
	require.ErrorContains(t, err, "Application not found")
}

func TestResolveID(t *testing.T) {
	id, err := resolveID("https://apply.example.com/resume?id=abc")
	require.NoError(t, err)
	require.Equal(t, "abc", id)

	id, err = resolveID(" abc ")
	require.NoError(t, err)
	require.Equal(t, "abc", id)

	_, err = resolveID("https://apply.example.com/resume")
	require.Error(t, err)

	_, err = resolveID("")
	require.Error(t, err)
}
