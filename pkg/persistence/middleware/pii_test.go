package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/stepflow/pkg/adapters/memory"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/persistence/middleware"
	"github.com/aretw0/stepflow/pkg/ports"
)

func TestRedactMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewRedactMiddleware([]string{"password", "token"})
	if err != nil {
		t.Fatal(err)
	}
	store := mw(underlying)
	ctx := context.Background()

	flow := &domain.Flow{
		ID: "login",
		Steps: []domain.Step{
			{ID: "0", Operator: "@trigger/manual", DataSource: &domain.Step{
				ID: "1", Operator: "@db/query", Parameters: map[string]any{"db_password": "hunter2"},
			}},
			{ID: "2", Operator: "@http/post", Parameters: map[string]any{
				"user": "jdoe",
				"auth": map[string]any{"token": "abc", "scheme": "bearer"},
				// References stay so the stored flow still resolves.
				"password": "{{__0.source.password}}",
			}},
		},
	}

	if err := store.Save(ctx, "login", flow); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if flow.Steps[0].DataSource.Parameters["db_password"] != "hunter2" {
		t.Error("Middleware modified the caller's flow")
	}

	stored, err := underlying.Load(ctx, "login")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if got := stored.Steps[0].DataSource.Parameters["db_password"]; got != middleware.Mask {
		t.Errorf("Data source password should be masked, got %v", got)
	}
	params := stored.Steps[1].Parameters
	if params["user"] != "jdoe" {
		t.Error("user shouldn't be masked")
	}
	if got := params["auth"].(map[string]any)["token"]; got != middleware.Mask {
		t.Errorf("Nested token should be masked, got %v", got)
	}
	if params["password"] != "{{__0.source.password}}" {
		t.Errorf("Reference should be kept, got %v", params["password"])
	}
}

func TestRedactMiddleware_BadPattern(t *testing.T) {
	if _, err := middleware.NewRedactMiddleware([]string{"("}); err == nil {
		t.Error("Expected an error for an invalid pattern")
	}
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.FlowStore) ports.FlowStore {
			order = append(order, name)
			return next
		}
	}
	middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	if len(order) != 2 || order[0] != "inner" || order[1] != "outer" {
		t.Errorf("Expected inner to wrap first, got %v", order)
	}
}
