package view

import (
	"context"
	"errors"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	. "userdir/pkg/test"

	"userdir/internal/adapter/apiclient"
	"userdir/internal/adapter/database/repository"
	"userdir/internal/adapter/http/handler"
	"userdir/internal/adapter/http/routes"
	"userdir/internal/core/domain"
	"userdir/internal/core/service"
)

type fakeTimer struct {
	after   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{after: d, fn: f}
	c.timers = append(c.timers, t)
	return &fakeTimerHandle{clock: c, timer: t}
}

type fakeTimerHandle struct {
	clock *fakeClock
	timer *fakeTimer
}

func (h *fakeTimerHandle) Stop() bool {
	h.clock.mu.Lock()
	defer h.clock.mu.Unlock()

	active := !h.timer.stopped && !h.timer.fired
	h.timer.stopped = true
	return active
}

func (c *fakeClock) snapshot() []fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]fakeTimer, len(c.timers))
	for i, t := range c.timers {
		out[i] = *t
	}
	return out
}

// FireAll runs every timer that is still pending.
func (c *fakeClock) FireAll() {
	c.mu.Lock()
	var pending []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			pending = append(pending, t)
		}
	}
	c.mu.Unlock()

	for _, t := range pending {
		t.fn()
	}
}

type fakeAPI struct {
	mu      sync.Mutex
	users   []domain.User
	listErr error
	saveErr error
	creates int
	nextID  int

	gate    chan struct{}
	release sync.Once

	listGate chan struct{}
}

func (a *fakeAPI) wait() {
	if a.gate != nil {
		<-a.gate
	}
}

func (a *fakeAPI) open() {
	if a.gate != nil {
		a.release.Do(func() { close(a.gate) })
	}
}

func (a *fakeAPI) ListUsers(ctx context.Context) ([]domain.User, error) {
	if a.listGate != nil {
		<-a.listGate
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.listErr != nil {
		return nil, a.listErr
	}
	return append([]domain.User{}, a.users...), nil
}

func (a *fakeAPI) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	a.mu.Lock()
	a.creates++
	a.mu.Unlock()

	a.wait()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.saveErr != nil {
		return domain.User{}, a.saveErr
	}
	a.nextID++
	user.ID = "id-" + strconv.Itoa(a.nextID)
	a.users = append(a.users, user)
	return user, nil
}

func (a *fakeAPI) UpdateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if a.saveErr != nil {
		return domain.User{}, a.saveErr
	}
	return user, nil
}

func (a *fakeAPI) DeleteUser(ctx context.Context, id string) error {
	return nil
}

func (a *fakeAPI) createCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.creates
}

func dispatchForm(p *Program, f Form) {
	ctx := context.Background()
	p.Dispatch(ctx, SetField{Field: FieldFullName, Value: f.FullName})
	p.Dispatch(ctx, SetField{Field: FieldEmail, Value: f.Email})
	p.Dispatch(ctx, SetField{Field: FieldAge, Value: f.Age})
	p.Dispatch(ctx, SetField{Field: FieldGender, Value: f.Gender})
	p.Dispatch(ctx, SetField{Field: FieldAddress, Value: f.Address})
}

type ProgramSuite struct {
	suite.Suite
	api     *fakeAPI
	clock   *fakeClock
	program *Program
	logs    *observer.ObservedLogs
}

func (s *ProgramSuite) SetupTest() {
	core, logs := observer.New(zapcore.ErrorLevel)

	s.api = &fakeAPI{users: []domain.User{ann}}
	s.clock = &fakeClock{}
	s.logs = logs
	s.program = NewProgram(s.api, WithAfterFunc(s.clock.AfterFunc), WithLogger(zap.New(core)))
}

func (s *ProgramSuite) TearDownTest() {
	s.api.open()
	s.program.Stop()
}

func TestProgramSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(ProgramSuite))
}

func (s *ProgramSuite) TestStart_LoadsUsersOnce() {
	s.program.Start(context.Background())

	Eventually(func() []domain.User { return s.program.State().Users }).Should(Equal([]domain.User{ann}))
	Expect(s.program.State().Loading).To(BeFalse())
}

func (s *ProgramSuite) TestStart_ReportsLoadingBeforeReturning() {
	s.api.listGate = make(chan struct{})
	s.program.Start(context.Background())

	Expect(s.program.State().Loading).To(BeTrue())
	Expect(s.program.State().Pending()).To(BeTrue())

	close(s.api.listGate)

	Eventually(func() []domain.User { return s.program.State().Users }).Should(Equal([]domain.User{ann}))
	Expect(s.program.State().Loading).To(BeFalse())
}

func (s *ProgramSuite) TestSendBeforeStartIsQueued() {
	Expect(func() {
		s.program.Send(SetField{Field: FieldFullName, Value: "Early Bird"})
	}).NotTo(Panic())

	s.program.Start(context.Background())

	Expect(s.program.State().Form.FullName).To(Equal("Early Bird"))
}

func (s *ProgramSuite) TestStart_LoadFailureIsLogged() {
	s.api.listErr = errors.New("connection refused")
	s.program.Start(context.Background())

	Eventually(func() int { return s.logs.FilterMessage(MsgLoadFailedLog).Len() }).Should(Equal(1))
	Expect(s.program.State().Notification).To(BeNil())
	Expect(s.program.State().Users).To(BeEmpty())
}

func (s *ProgramSuite) TestNotification_DismissedByTimer() {
	s.program.Start(context.Background())
	Eventually(func() []domain.User { return s.program.State().Users }).Should(HaveLen(1))

	s.program.Dispatch(context.Background(), Delete{ID: ann.ID})
	Eventually(func() *Notification { return s.program.State().Notification }).ShouldNot(BeNil())

	timers := s.clock.snapshot()
	Expect(timers).To(HaveLen(1))
	Expect(timers[0].after).To(Equal(3 * time.Second))

	s.clock.FireAll()

	Eventually(func() *Notification { return s.program.State().Notification }).Should(BeNil())
}

func (s *ProgramSuite) TestNotification_NewOneCancelsOldTimer() {
	s.api.saveErr = errors.New("offline")
	s.program.Start(context.Background())

	dispatchForm(s.program, validForm())
	s.program.Dispatch(context.Background(), Submit{})
	Eventually(func() int { return len(s.clock.snapshot()) }).Should(Equal(1))

	s.program.Dispatch(context.Background(), Submit{})
	Eventually(func() int { return len(s.clock.snapshot()) }).Should(Equal(2))

	timers := s.clock.snapshot()
	Expect(timers[0].stopped).To(BeTrue())
	Expect(timers[1].stopped).To(BeFalse())
	Expect(s.program.State().Notification.ID).To(Equal(2))
}

func (s *ProgramSuite) TestSlowSaveDoesNotBlockOtherActions() {
	s.api.gate = make(chan struct{})
	s.program.Start(context.Background())
	Eventually(func() []domain.User { return s.program.State().Users }).Should(HaveLen(1))

	dispatchForm(s.program, validForm())
	Expect(s.program.Dispatch(context.Background(), Submit{})).To(Succeed())
	Eventually(s.api.createCount).Should(Equal(1))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	Expect(s.program.Dispatch(ctx, Edit{ID: ann.ID})).To(Succeed())
	Expect(s.program.State().Saving).To(BeTrue())

	Expect(s.program.Dispatch(ctx, Submit{})).To(Succeed())
	Consistently(s.api.createCount, 100*time.Millisecond).Should(Equal(1))

	s.api.open()

	Eventually(func() bool { return s.program.State().Saving }).Should(BeFalse())
	Expect(s.program.State().Users).To(HaveLen(2))
	Expect(s.program.State().Notification.Message).To(Equal(MsgUserAdded))
}

func TestProgram_EndToEndAgainstAPI(t *testing.T) {
	RegisterTestingT(t)

	db := InitTestDB()
	defer db.Close()

	repo := repository.NewUserRepository(db, nil)
	router := routes.SetupRouterForTests(routes.HandlersConfig{
		UserHandler: handler.NewUserHandler(service.NewUserService(repo, nil), nil),
	}, "http://localhost:3000")
	server := httptest.NewServer(router)
	defer server.Close()

	clock := &fakeClock{}
	program := NewProgram(apiclient.New(server.URL, 5*time.Second), WithAfterFunc(clock.AfterFunc))
	program.Start(context.Background())
	defer program.Stop()

	ctx := context.Background()

	dispatchForm(program, validForm())
	program.Dispatch(ctx, Submit{})

	Eventually(func() []domain.User { return program.State().Users }).Should(HaveLen(1))
	created := program.State().Users[0]
	Expect(created.ID).NotTo(BeEmpty())
	Expect(created.FullName).To(Equal("Cara Diaz"))
	Expect(program.State().Notification.Message).To(ContainSubstring("added successfully"))

	program.Dispatch(ctx, Edit{ID: created.ID})
	program.Dispatch(ctx, SetField{Field: FieldAddress, Value: "31 Spooner Street, Quahog"})
	program.Dispatch(ctx, Submit{})

	Eventually(func() string { return program.State().Users[0].Address }).Should(Equal("31 Spooner Street, Quahog"))
	Expect(program.State().Users[0].ID).To(Equal(created.ID))
	Expect(program.State().Notification.Message).To(ContainSubstring("updated successfully"))

	stored, _ := repo.List(ctx)
	Expect(stored).To(HaveLen(1))
	Expect(stored[0].Address).To(Equal("31 Spooner Street, Quahog"))

	program.Dispatch(ctx, Delete{ID: created.ID})

	Eventually(func() []domain.User { return program.State().Users }).Should(BeEmpty())
	Expect(program.State().Notification.Message).To(ContainSubstring("deleted successfully"))

	stored, _ = repo.List(ctx)
	Expect(stored).To(BeEmpty())
}

func TestProgram_StopWithoutStart(t *testing.T) {
	RegisterTestingT(t)

	program := NewProgram(&fakeAPI{})

	Expect(func() { program.Stop() }).NotTo(Panic())
	Expect(program.Dispatch(context.Background(), Init{})).To(MatchError(context.Canceled))
}
