package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	. "userdir/pkg/test"

	"userdir/internal/adapter/apiclient"
	"userdir/internal/adapter/database"
	"userdir/internal/adapter/database/repository"
	"userdir/internal/adapter/http/handler"
	"userdir/internal/adapter/http/routes"
	"userdir/internal/core/domain"
	"userdir/internal/core/port"
	"userdir/internal/core/service"
	"userdir/internal/view"
	"userdir/pkg/test/factory"
)

type PageSuite struct {
	suite.Suite
	DB       *database.DB
	UserRepo port.UserRepository
	API      *httptest.Server
	Program  *view.Program
	Router   *gin.Engine
}

func (s *PageSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.DB = InitTestDB()
	s.UserRepo = repository.NewUserRepository(s.DB, nil)

	api := routes.SetupRouterForTests(routes.HandlersConfig{
		UserHandler: handler.NewUserHandler(service.NewUserService(s.UserRepo, nil), nil),
	}, "http://localhost:3000")
	s.API = httptest.NewServer(api)

	s.Program = view.NewProgram(apiclient.New(s.API.URL, 5*time.Second))

	router, err := NewRouter(s.Program, nil, "userdir-web")
	s.Require().NoError(err)
	s.Router = router
}

func (s *PageSuite) TearDownTest() {
	s.Program.Stop()
	s.API.Close()
	s.DB.Close()
}

func TestPageSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(PageSuite))
}

func (s *PageSuite) start() {
	s.Program.Start(context.Background())
	Eventually(func() bool { return s.Program.State().Loading }).Should(BeFalse())
}

func (s *PageSuite) get(target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *PageSuite) post(target string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *PageSuite) body() string {
	return s.get("/").Body.String()
}

func validValues() url.Values {
	return url.Values{
		"fullName": {"Cara Diaz"},
		"email":    {"cara@example.com"},
		"age":      {"27"},
		"gender":   {"Other"},
		"address":  {"4 Privet Drive, Surrey"},
	}
}

func (s *PageSuite) TestIndex_ListsStoredUsers() {
	user := factory.NewUser[domain.User](map[string]any{"ID": uuid.NewString(), "FullName": "Ann Smith"})
	Expect(s.UserRepo.Create(context.Background(), user)).To(Succeed())

	s.start()

	w := s.get("/")

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(ContainSubstring("User Management"))
	Expect(w.Body.String()).To(ContainSubstring("Ann Smith"))
	Expect(w.Body.String()).To(ContainSubstring("Add User"))
	Expect(w.Body.String()).NotTo(ContainSubstring(`http-equiv="refresh"`))
}

func (s *PageSuite) TestSubmit_InvalidFormShowsAllErrors() {
	s.start()

	w := s.post("/users", url.Values{"fullName": {"Al"}, "email": {"bad"}, "age": {"17"}, "address": {"short"}})

	Expect(w.Code).To(Equal(http.StatusSeeOther))
	Expect(w.Header().Get("Location")).To(Equal("/"))

	page := s.body()
	Expect(page).To(ContainSubstring("Name must be at least 3 characters long"))
	Expect(page).To(ContainSubstring("Please enter a valid email address"))
	Expect(page).To(ContainSubstring("Age must be 18 or older"))
	Expect(page).To(ContainSubstring("Please select a gender"))
	Expect(page).To(ContainSubstring("Address must be at least 10 characters long"))
	Expect(CountUsers(s.T(), s.DB)).To(Equal(0))
}

func (s *PageSuite) TestAddEditDelete() {
	s.start()

	s.post("/users", validValues())

	Eventually(s.body).Should(ContainSubstring("User added successfully!"))
	Expect(s.body()).To(ContainSubstring("Cara Diaz"))
	Expect(s.body()).To(ContainSubstring(`http-equiv="refresh"`))

	id := s.Program.State().Users[0].ID

	s.post("/users/"+id+"/edit", nil)

	page := s.body()
	Expect(page).To(ContainSubstring("Update User"))
	Expect(page).To(ContainSubstring(`value="cara@example.com"`))

	values := validValues()
	values.Set("address", "31 Spooner Street, Quahog")
	s.post("/users", values)

	Eventually(s.body).Should(ContainSubstring("User updated successfully!"))
	Expect(s.body()).To(ContainSubstring("31 Spooner Street, Quahog"))
	Expect(s.body()).To(ContainSubstring("Add User"))

	s.post("/users/"+id+"/delete", nil)

	Eventually(s.body).Should(ContainSubstring("User deleted successfully!"))
	Expect(s.body()).To(ContainSubstring("No users yet"))
	Expect(CountUsers(s.T(), s.DB)).To(Equal(0))
}

func (s *PageSuite) TestCancelEdit() {
	created := factory.NewUser[domain.User](map[string]any{"ID": uuid.NewString()})
	Expect(s.UserRepo.Create(context.Background(), created)).To(Succeed())

	s.start()
	Expect(s.Program.State().Users).To(HaveLen(1))

	s.post("/users/"+created.ID+"/edit", nil)
	Expect(s.Program.State().EditingID).To(Equal(created.ID))

	s.post("/users/edit/cancel", nil)

	state := s.Program.State()
	Expect(state.EditingID).To(BeEmpty())
	Expect(state.Form).To(Equal(view.Form{}))
}

func (s *PageSuite) TestSubmit_ConcurrentPostsKeepFormsWhole() {
	s.start()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			values := validValues()
			values.Set("fullName", fmt.Sprintf("Person %d", i))
			values.Set("email", fmt.Sprintf("person%d@example.com", i))
			s.post("/users", values)
		}()
	}
	wg.Wait()

	Eventually(func() bool { return s.Program.State().Saving }).Should(BeFalse())

	stored, err := s.UserRepo.List(context.Background())
	Expect(err).To(BeNil())
	Expect(stored).NotTo(BeEmpty())

	for _, user := range stored {
		var n int
		_, err := fmt.Sscanf(user.FullName, "Person %d", &n)
		Expect(err).To(BeNil())
		Expect(user.Email).To(Equal(fmt.Sprintf("person%d@example.com", n)))
	}
}

func (s *PageSuite) TestIndex_RefreshesWhileDeleting() {
	created := factory.NewUser[domain.User](map[string]any{"ID": uuid.NewString()})
	Expect(s.UserRepo.Create(context.Background(), created)).To(Succeed())

	s.start()

	Expect(s.Program.Dispatch(context.Background(), view.Delete{ID: created.ID})).To(Succeed())

	state := s.Program.State()
	Expect(state.Deleting > 0 || state.Notification != nil).To(BeTrue())
	Expect(s.body()).To(ContainSubstring(`http-equiv="refresh"`))

	Eventually(s.body).Should(ContainSubstring("User deleted successfully!"))
}

func (s *PageSuite) TestState_ReturnsSnapshot() {
	s.start()

	w := s.get("/state")

	Expect(w.Code).To(Equal(http.StatusOK))

	var state map[string]any
	Expect(json.Unmarshal(w.Body.Bytes(), &state)).To(Succeed())
	Expect(state["users"]).To(BeEmpty())
	Expect(state["loading"]).To(BeFalse())
}

func TestDispatch_StoppedProgram(t *testing.T) {
	RegisterTestingT(t)

	program := view.NewProgram(apiclient.New("http://127.0.0.1:0", time.Second))
	program.Start(context.Background())
	program.Stop()

	router, err := NewRouter(program, nil, "userdir-web")
	Expect(err).To(BeNil())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/users/edit/cancel", nil)
	router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
}
