package prompt

import (
	"strings"
	"testing"
)

func TestBuildContainsInputsVerbatim(t *testing.T) {
	cases := []struct {
		name     string
		question string
		context  string
	}{
		{"plain", "What color is the sky?", "The sky is blue."},
		{"multiline", "q line1\nq line2", "fact1\nfact2\nfact3"},
		{"markup", `{"not":"escaped"} <b> & %s`, "100% raw & unescaped"},
		{"unicode", "What does 空 mean?", "空 means sky."},
		{"markers in input", "is [FACTS] literal?", "the [QUESTION] marker"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Build(tc.question, tc.context)
			if !strings.Contains(out, tc.question) {
				t.Fatalf("prompt does not contain question verbatim:\n%s", out)
			}
			if !strings.Contains(out, tc.context) {
				t.Fatalf("prompt does not contain context verbatim:\n%s", out)
			}
			if !strings.Contains(out, QuestionMarker) || !strings.Contains(out, FactsMarker) {
				t.Fatalf("prompt missing section markers:\n%s", out)
			}
		})
	}
}

func TestBuildQuestionBeforeFacts(t *testing.T) {
	out := Build("Q", "C")
	qi := strings.Index(out, QuestionMarker)
	fi := strings.Index(out, FactsMarker)
	if qi < 0 || fi < 0 || qi > fi {
		t.Fatalf("marker order wrong (q=%d f=%d):\n%s", qi, fi, out)
	}
	if strings.Index(out, "Q") < qi || strings.Index(out, "C") < fi {
		t.Fatalf("inputs not under their markers:\n%s", out)
	}
}

func TestBuildEmptyInputs(t *testing.T) {
	for _, tc := range [][2]string{{"", ""}, {"only question", ""}, {"", "only context"}} {
		out := Build(tc[0], tc[1])
		if !strings.Contains(out, QuestionMarker) || !strings.Contains(out, FactsMarker) {
			t.Fatalf("empty input broke prompt shape:\n%q", out)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := Build("same", "inputs")
	b := Build("same", "inputs")
	if a != b {
		t.Fatalf("prompt not deterministic:\n%q\nvs\n%q", a, b)
	}
}

func TestBuildExactLayout(t *testing.T) {
	got := Build("Q?", "F.")
	want := "\nPlease answer the following question based on the given text:\n\n[QUESTION]\nQ?\n\n[FACTS]\nF.\n"
	if got != want {
		t.Fatalf("layout drifted:\ngot  %q\nwant %q", got, want)
	}
}
