package swagger

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name" openapi:"minLength=1,description=Display name"`
}

type testReport struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags,omitempty"`
	Owner     *testUser `json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type testNode struct {
	Name     string      `json:"name"`
	Children []*testNode `json:"children,omitempty"`
}

type testCreateForm struct {
	Name string `json:"name" api:"required,description=Report name"`
	Size int    `json:"size,omitempty" api:"default=10"`
	Kind string `json:"kind" api:"allowable=daily|weekly"`
}

type testCreateBody struct {
	Title string   `json:"title" api:"required"`
	Owner testUser `json:"owner" api:"name=owner_ref"`
}

type testNoMeta struct {
	Title string `json:"title"`
}

func observedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func paramByName(params []*Parameter, name string) *Parameter {
	for _, p := range params {
		if p.Name == name {
			return p
		}
	}
	return nil
}
