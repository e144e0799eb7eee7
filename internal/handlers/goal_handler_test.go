package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "tracker/internal/errors"
	"tracker/internal/models"
	"tracker/internal/services"
)

// --- mock goal service ---

type mockGoalService struct {
	listGoalsFn      func(status *models.GoalStatus) ([]models.Goal, error)
	getGoalFn        func(id string) (*models.Goal, error)
	addGoalFn        func(in services.GoalInput) (*models.Goal, error)
	updateGoalFn     func(id string, upd services.GoalUpdate) (*models.Goal, error)
	updateProgressFn func(id string, current float64) (*models.Goal, error)
	deleteGoalFn     func(id string) error
}

func (m *mockGoalService) Reload(context.Context) error { return nil }

func (m *mockGoalService) ListGoals(_ context.Context, status *models.GoalStatus) ([]models.Goal, error) {
	if m.listGoalsFn != nil {
		return m.listGoalsFn(status)
	}
	return []models.Goal{}, nil
}

func (m *mockGoalService) GetGoal(_ context.Context, id string) (*models.Goal, error) {
	if m.getGoalFn != nil {
		return m.getGoalFn(id)
	}
	return &models.Goal{}, nil
}

func (m *mockGoalService) AddGoal(_ context.Context, in services.GoalInput) (*models.Goal, error) {
	if m.addGoalFn != nil {
		return m.addGoalFn(in)
	}
	return &models.Goal{}, nil
}

func (m *mockGoalService) UpdateGoal(_ context.Context, id string, upd services.GoalUpdate) (*models.Goal, error) {
	if m.updateGoalFn != nil {
		return m.updateGoalFn(id, upd)
	}
	return &models.Goal{}, nil
}

func (m *mockGoalService) UpdateProgress(_ context.Context, id string, current float64) (*models.Goal, error) {
	if m.updateProgressFn != nil {
		return m.updateProgressFn(id, current)
	}
	return nil, nil
}

func (m *mockGoalService) DeleteGoal(_ context.Context, id string) error {
	if m.deleteGoalFn != nil {
		return m.deleteGoalFn(id)
	}
	return nil
}

var _ services.GoalServicer = (*mockGoalService)(nil)

func setupGoalRouter(handler *GoalHandler) *gin.Engine {
	r := gin.New()
	r.GET("/goals", handler.ListGoals)
	r.POST("/goals", handler.CreateGoal)
	r.GET("/goals/:id", handler.GetGoal)
	r.PUT("/goals/:id", handler.UpdateGoal)
	r.PUT("/goals/:id/progress", handler.UpdateProgress)
	r.DELETE("/goals/:id", handler.DeleteGoal)
	return r
}

func TestGoalHandler_ListGoals(t *testing.T) {
	var got *models.GoalStatus
	svc := &mockGoalService{
		listGoalsFn: func(status *models.GoalStatus) ([]models.Goal, error) {
			got = status
			return []models.Goal{{Name: "Save 100k", Status: models.GoalStatusActive}}, nil
		},
	}
	r := setupGoalRouter(NewGoalHandler(svc))

	t.Run("lists every goal", func(t *testing.T) {
		rec := doRequest(r, "GET", "/goals", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got != nil {
			t.Errorf("expected no status filter, got %v", *got)
		}
		if goals := parseJSON(t, rec)["goals"].([]interface{}); len(goals) != 1 {
			t.Errorf("expected 1 goal, got %d", len(goals))
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		rec := doRequest(r, "GET", "/goals?status=completed", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got == nil || *got != models.GoalStatusCompleted {
			t.Errorf("expected completed filter, got %v", got)
		}
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		rec := doRequest(r, "GET", "/goals?status=paused", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestGoalHandler_CreateGoal(t *testing.T) {
	svc := &mockGoalService{
		addGoalFn: func(in services.GoalInput) (*models.Goal, error) {
			return &models.Goal{Base: models.Base{ID: "g1"}, Name: in.Name, Target: in.Target, Period: in.Period, Status: models.GoalStatusActive}, nil
		},
	}
	r := setupGoalRouter(NewGoalHandler(svc))

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"valid goal", `{"name":"Run 100km","type":"habit","target":100,"period":"monthly","unit":"km"}`, http.StatusCreated},
		{"missing target", `{"name":"Run","type":"habit","period":"monthly"}`, http.StatusBadRequest},
		{"unknown type", `{"name":"Run","type":"fitness","target":10,"period":"monthly"}`, http.StatusBadRequest},
		{"unknown period", `{"name":"Run","type":"habit","target":10,"period":"hourly"}`, http.StatusBadRequest},
		{"bad start date", `{"name":"Run","type":"habit","target":10,"period":"monthly","startDate":"01/02/2024"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, "POST", "/goals", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantCode == http.StatusBadRequest {
				assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
			}
		})
	}
}

func TestGoalHandler_UpdateProgress(t *testing.T) {
	t.Run("completes at target", func(t *testing.T) {
		svc := &mockGoalService{
			updateProgressFn: func(id string, current float64) (*models.Goal, error) {
				g := &models.Goal{Base: models.Base{ID: id}, Target: 100, Current: current}
				g.Status = g.StatusFor(current)
				return g, nil
			},
		}
		r := setupGoalRouter(NewGoalHandler(svc))

		rec := doRequest(r, "PUT", "/goals/g1/progress", `{"current":100}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		goal := parseJSON(t, rec)["goal"].(map[string]interface{})
		if goal["status"] != "completed" {
			t.Errorf("expected completed, got %v", goal["status"])
		}
	})

	t.Run("accepts zero", func(t *testing.T) {
		svc := &mockGoalService{
			updateProgressFn: func(id string, current float64) (*models.Goal, error) {
				return &models.Goal{Base: models.Base{ID: id}, Target: 100, Current: current, Status: models.GoalStatusActive}, nil
			},
		}
		r := setupGoalRouter(NewGoalHandler(svc))

		rec := doRequest(r, "PUT", "/goals/g1/progress", `{"current":0}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("requires current", func(t *testing.T) {
		r := setupGoalRouter(NewGoalHandler(&mockGoalService{}))
		rec := doRequest(r, "PUT", "/goals/g1/progress", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 for unknown goal", func(t *testing.T) {
		r := setupGoalRouter(NewGoalHandler(&mockGoalService{}))
		rec := doRequest(r, "PUT", "/goals/missing/progress", `{"current":5}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "GOAL_NOT_FOUND")
	})
}

func TestGoalHandler_UpdateGoal(t *testing.T) {
	t.Run("marks a goal failed", func(t *testing.T) {
		var got services.GoalUpdate
		svc := &mockGoalService{
			updateGoalFn: func(id string, upd services.GoalUpdate) (*models.Goal, error) {
				got = upd
				return &models.Goal{Base: models.Base{ID: id}, Status: *upd.Status}, nil
			},
		}
		r := setupGoalRouter(NewGoalHandler(svc))

		rec := doRequest(r, "PUT", "/goals/g1", `{"status":"failed"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Status == nil || *got.Status != models.GoalStatusFailed {
			t.Errorf("expected failed status to be passed through, got %v", got.Status)
		}
		if got.Name != nil {
			t.Errorf("expected name untouched, got %v", *got.Name)
		}
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		r := setupGoalRouter(NewGoalHandler(&mockGoalService{}))
		rec := doRequest(r, "PUT", "/goals/g1", `{"status":"paused"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("surfaces not found", func(t *testing.T) {
		svc := &mockGoalService{
			updateGoalFn: func(string, services.GoalUpdate) (*models.Goal, error) {
				return nil, apperrors.ErrGoalNotFound
			},
		}
		r := setupGoalRouter(NewGoalHandler(svc))
		rec := doRequest(r, "PUT", "/goals/missing", `{"name":"x"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestGoalHandler_DeleteGoal(t *testing.T) {
	var deleted string
	svc := &mockGoalService{
		deleteGoalFn: func(id string) error {
			deleted = id
			return nil
		},
	}
	r := setupGoalRouter(NewGoalHandler(svc))

	rec := doRequest(r, "DELETE", "/goals/g7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != "g7" {
		t.Errorf("expected g7 deleted, got %q", deleted)
	}
	if msg := parseJSON(t, rec)["message"]; msg != "Goal deleted successfully" {
		t.Errorf("unexpected message %v", msg)
	}
}
