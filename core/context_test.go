package core

import (
	"testing"
	"time"

	"bom-gen/config"
)

func TestNewGenerationContext_MergeParams(t *testing.T) {
	b := config.Default()
	b.Parameters = map[string]string{
		"env":    "prod",
		"region": "us",
		"day":    "$date:compact:day:0",
	}

	ctx, err := NewGenerationContext(b, &StyleIndex{}, "templates", map[string]string{
		"env":   "dev",
		"extra": "1",
	})
	if err != nil {
		t.Fatalf("NewGenerationContext error: %v", err)
	}

	if ctx.Parameters["env"] != "dev" {
		t.Errorf("env = %q, want dev", ctx.Parameters["env"])
	}
	if ctx.Parameters["region"] != "us" || ctx.Parameters["extra"] != "1" {
		t.Errorf("parameters = %v", ctx.Parameters)
	}
	if want := time.Now().Format("20060102"); ctx.Parameters["day"] != want {
		t.Errorf("day = %q, want %q", ctx.Parameters["day"], want)
	}
	if ctx.Colors.Len() != 10 {
		t.Errorf("colors = %d, want 10", ctx.Colors.Len())
	}
}

func TestNewGenerationContext_BadParameter(t *testing.T) {
	b := config.Default()
	if _, err := NewGenerationContext(b, &StyleIndex{}, "", map[string]string{"d": "$date:day:day:x"}); err == nil {
		t.Fatal("expected error for bad dynamic date")
	}
}

func TestGenerationContext_ProductNameAndParams(t *testing.T) {
	ctx, err := NewGenerationContext(config.Default(), &StyleIndex{}, "", map[string]string{"batch": "b1"})
	if err != nil {
		t.Fatalf("NewGenerationContext error: %v", err)
	}
	rec := StyleRecord{StyleCode: "H5A413492", Wave: "春一波", Category: "长袖T恤"}

	if got := ctx.ProductName(rec); got != "HECO春一波长袖T恤H5A413492" {
		t.Errorf("ProductName = %q", got)
	}
	params := ctx.styleParams(rec)
	if params["style_code"] != "H5A413492" || params["wave"] != "春一波" || params["category"] != "长袖T恤" || params["batch"] != "b1" {
		t.Errorf("styleParams = %v", params)
	}
	if _, ok := ctx.Parameters["style_code"]; ok {
		t.Error("styleParams should not modify the context parameters")
	}
}
