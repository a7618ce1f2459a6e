// Package testutil provides shared fixtures and assertions for tests of the
// ioc container and its integrations.
package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/junioryono/ioc"
)

// TestService is a basic service with a unique instance number.
type TestService struct {
	ID string
}

var instances atomic.Int64

// NewTestService creates a TestService with a fresh ID.
func NewTestService() *TestService {
	return &TestService{ID: fmt.Sprintf("service-%d", instances.Add(1))}
}

// TestLogger records logged messages.
type TestLogger interface {
	Log(msg string)
	GetLogs() []string
}

type TestLoggerImpl struct {
	mu   sync.Mutex
	logs []string
}

func NewTestLogger() TestLogger {
	return &TestLoggerImpl{}
}

func (l *TestLoggerImpl) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, msg)
}

func (l *TestLoggerImpl) GetLogs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	logs := make([]string, len(l.logs))
	copy(logs, l.logs)
	return logs
}

// TestDatabase is a fake database.
type TestDatabase interface {
	Query(sql string) string
}

type TestDatabaseImpl struct {
	name string
}

func NewTestDatabase() TestDatabase {
	return &TestDatabaseImpl{name: "testdb"}
}

func (d *TestDatabaseImpl) Query(sql string) string {
	return d.name + ": " + sql
}

// TestRequestContext is a per-request value.
type TestRequestContext struct {
	RequestID string
}

func NewTestRequestContext() *TestRequestContext {
	return &TestRequestContext{RequestID: fmt.Sprintf("req-%d", instances.Add(1))}
}

// TestUserService consumes the other fixtures.
type TestUserService struct {
	Logger  TestLogger
	DB      TestDatabase
	Request *TestRequestContext
}

func NewTestUserService(logger TestLogger, db TestDatabase, req *TestRequestContext) *TestUserService {
	return &TestUserService{Logger: logger, DB: db, Request: req}
}

// Lookup queries the database for a user and logs the request.
func (s *TestUserService) Lookup(user string) string {
	s.Logger.Log(s.Request.RequestID + " lookup " + user)
	return s.DB.Query("SELECT " + user)
}

// Identifiers for the fixtures.
var (
	TestServiceID        = ioc.NewIdentifier[*TestService]("TestService")
	TestLoggerID         = ioc.NewIdentifier[TestLogger]("TestLogger")
	TestDatabaseID       = ioc.NewIdentifier[TestDatabase]("TestDatabase")
	TestRequestContextID = ioc.NewIdentifier[*TestRequestContext]("TestRequestContext")
	TestUserServiceID    = ioc.NewIdentifier[*TestUserService]("TestUserService")
)

// AppModule registers every fixture: the logger and database as singletons,
// the request context and user service as scoped, and TestService as
// transient.
func AppModule() ioc.ModuleOption {
	return ioc.NewModule("testutil.app",
		ioc.AddSingleton(TestLoggerID, NewTestLogger),
		ioc.AddSingleton(TestDatabaseID, NewTestDatabase),
		ioc.AddScoped(TestRequestContextID, NewTestRequestContext),
		ioc.AddScoped(TestUserServiceID, NewTestUserService,
			ioc.DependsOn(TestLoggerID, TestDatabaseID, TestRequestContextID)),
		ioc.AddTransient(TestServiceID, NewTestService),
	)
}
