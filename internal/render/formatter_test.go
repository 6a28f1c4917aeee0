package render

import (
	"strings"
	"testing"

	"exhibitrag/internal/domain"
)

func TestFormat_Empty(t *testing.T) {
	f := NewTextFormatter()
	if got := f.Format(nil); got != "" {
		t.Errorf("expected empty string for no works, got %q", got)
	}
}

func TestFormat_SingleWork(t *testing.T) {
	f := NewTextFormatter()
	out := f.Format([]domain.Work{{
		ID:      "zoneA_0",
		Name:    "永栖所",
		Authors: "张三",
		Zone:    "环境设计",
	}})

	if !strings.HasPrefix(out, Separator+"\n") {
		t.Error("expected output to start with separator")
	}
	if !strings.Contains(out, "作品名称：《永栖所》") {
		t.Errorf("missing name line:\n%s", out)
	}
	if !strings.Contains(out, "设计作者：张三") {
		t.Errorf("missing authors line:\n%s", out)
	}
	// Empty fields render the placeholder instead of being dropped.
	if !strings.Contains(out, "指导老师："+Placeholder) {
		t.Errorf("missing placeholder for empty advisor:\n%s", out)
	}
	if !strings.Contains(out, "所属展区：环境设计") {
		t.Errorf("missing zone line:\n%s", out)
	}
}

func TestFormat_StableFieldPositions(t *testing.T) {
	f := NewTextFormatter()
	out := f.Format([]domain.Work{{ID: "a", Name: "甲"}, {ID: "b", Name: "乙"}})

	blocks := strings.Split(out, Separator+"\n")
	// Leading separator produces an empty first element.
	if len(blocks) != 3 {
		t.Fatalf("expected 2 separator-delimited blocks, got %d", len(blocks)-1)
	}

	first := strings.Split(strings.TrimSpace(blocks[1]), "\n")
	second := strings.Split(strings.TrimSpace(blocks[2]), "\n")
	if len(first) != len(second) {
		t.Fatalf("blocks have unequal line counts: %d vs %d", len(first), len(second))
	}
	for i := range first {
		labelA := strings.SplitN(first[i], "：", 2)[0]
		labelB := strings.SplitN(second[i], "：", 2)[0]
		if labelA != labelB {
			t.Errorf("line %d label mismatch: %q vs %q", i, labelA, labelB)
		}
	}
}

func TestFormat_Deterministic(t *testing.T) {
	f := NewTextFormatter()
	works := []domain.Work{
		{ID: "a", Name: "甲", Description: "描述甲"},
		{ID: "b", Name: "乙", Technical: "磁悬浮"},
	}
	if f.Format(works) != f.Format(works) {
		t.Error("formatting is not deterministic")
	}
}

func TestDocument_SkipsEmptyFields(t *testing.T) {
	doc := Document(domain.Work{
		ID:          "zoneA_0",
		Name:        "永栖所",
		Description: "一个关于栖居的环境设计",
		Zone:        "环境设计",
	})

	if !strings.Contains(doc, "作品名称：《永栖所》") {
		t.Errorf("missing name:\n%s", doc)
	}
	if strings.Contains(doc, Placeholder) {
		t.Errorf("document text must skip empty fields, not placeholder them:\n%s", doc)
	}
	if !strings.Contains(doc, "所属展区：环境设计") {
		t.Errorf("missing zone:\n%s", doc)
	}
}
