package bank

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

const canonicalCSV = `Question,Option A,Option B,Option C,Option D,Correct Answer
What is H2O?,Water,Salt,Sugar,Sand,Water
Largest planet?,Mars,Jupiter,Venus,Pluto,Jupiter
Smallest prime?,1,2,3,4,2
`

func loadCSV(t *testing.T, src string, opts Options) *Bank {
	t.Helper()
	b, err := Load(strings.NewReader(src), FormatCSV, opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b
}

func TestLoad_CanonicalHeaders(t *testing.T) {
	b := loadCSV(t, canonicalCSV, Options{})

	if len(b.Questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(b.Questions))
	}
	if b.Dropped != 0 {
		t.Errorf("dropped = %d, want 0", b.Dropped)
	}

	q := b.Questions[0]
	if q.Prompt != "What is H2O?" {
		t.Errorf("prompt = %q", q.Prompt)
	}
	if want := []string{"Water", "Salt", "Sugar", "Sand"}; !reflect.DeepEqual(q.Options, want) {
		t.Errorf("options = %v, want %v", q.Options, want)
	}
	if q.CorrectAnswer != "Water" {
		t.Errorf("correct = %q, want Water", q.CorrectAnswer)
	}
}

func TestLoad_SynonymHeaders(t *testing.T) {
	// Synonym headers, extra whitespace, and mixed case must resolve the
	// same logical fields as the canonical form.
	tests := []struct {
		name   string
		header string
	}{
		{"short forms", "Q,A,B,C,D,Ans"},
		{"alternate words", "Problem, Opt A , Opt B , Opt C , Opt D ,Key"},
		{"mixed case", "QUESTION,OPTION A,option b,Option C,OPTION D,CORRECT"},
		{"underscores", "prompt,option_a,option_b,option_c,option_d,correct_answer"},
	}

	want := loadCSV(t, canonicalCSV, Options{}).Questions

	body := strings.SplitN(canonicalCSV, "\n", 2)[1]
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := loadCSV(t, tc.header+"\n"+body, Options{})
			if !reflect.DeepEqual(b.Questions, want) {
				t.Errorf("questions = %+v, want %+v", b.Questions, want)
			}
		})
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantField string
	}{
		{"no prompt", "Option A,Option B,Answer\nx,y,x\n", "prompt"},
		{"no answer", "Question,Option A,Option B\nq,x,y\n", "correct_answer"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.src), FormatCSV, Options{})
			var missing *MissingColumnError
			if !errors.As(err, &missing) {
				t.Fatalf("err = %v, want MissingColumnError", err)
			}
			if missing.Field != tc.wantField {
				t.Errorf("field = %q, want %q", missing.Field, tc.wantField)
			}
		})
	}
}

func TestLoad_EmptySource(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no rows at all", ""},
		{"header only", "Question,Option A,Option B,Answer\n"},
		{"all rows malformed", "Question,Option A,Option B,Answer\nq1,,,x\nq2,only-one,,y\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tc.src), FormatCSV, Options{}); err != ErrEmptySource {
				t.Errorf("err = %v, want ErrEmptySource", err)
			}
		})
	}
}

func TestLoad_RowRejection(t *testing.T) {
	src := `Question,Option A,Option B,Option C,Option D,Answer
Good one,alpha,beta,gamma,delta,alpha
One option only,alpha,,,,alpha
,alpha,beta,,,alpha
No key,alpha,beta,,,
Another good,left,right,,,left
`
	b := loadCSV(t, src, Options{})

	if len(b.Questions) != 2 {
		t.Errorf("questions = %d, want 2", len(b.Questions))
	}
	if b.Dropped != 3 {
		t.Errorf("dropped = %d, want 3", b.Dropped)
	}
	if len(b.DroppedRows) != 3 {
		t.Fatalf("dropped rows = %d, want 3", len(b.DroppedRows))
	}
	// Row numbers are 1-based including the header row.
	if b.DroppedRows[0].Row != 3 {
		t.Errorf("first dropped row = %d, want 3", b.DroppedRows[0].Row)
	}
}

func TestLoad_EmptyMarkersCollapseOptions(t *testing.T) {
	src := `Question,Option A,Option B,Option C,Option D,Answer
Two options,yes,no,-,n/a,yes
Three options,red,green,blue,none,green
`
	b := loadCSV(t, src, Options{})

	if got := len(b.Questions[0].Options); got != 2 {
		t.Errorf("first record options = %d, want 2", got)
	}
	if got := len(b.Questions[1].Options); got != 3 {
		t.Errorf("second record options = %d, want 3", got)
	}
}

func TestLoad_ShuffleReproducible(t *testing.T) {
	first := loadCSV(t, canonicalCSV, Options{Shuffle: true, Rand: rand.New(rand.NewSource(42))})
	second := loadCSV(t, canonicalCSV, Options{Shuffle: true, Rand: rand.New(rand.NewSource(42))})

	if !reflect.DeepEqual(first.Questions, second.Questions) {
		t.Error("same seed produced different permutations")
	}

	// The permutation reorders whole records; nothing is lost or altered.
	unshuffled := loadCSV(t, canonicalCSV, Options{})
	if len(first.Questions) != len(unshuffled.Questions) {
		t.Fatalf("shuffle changed record count: %d vs %d", len(first.Questions), len(unshuffled.Questions))
	}
	seen := make(map[string]bool)
	for _, q := range first.Questions {
		seen[q.Prompt] = true
	}
	for _, q := range unshuffled.Questions {
		if !seen[q.Prompt] {
			t.Errorf("record %q lost in shuffle", q.Prompt)
		}
	}
}

func TestLoad_ShuffleRequiresRand(t *testing.T) {
	if _, err := Load(strings.NewReader(canonicalCSV), FormatCSV, Options{Shuffle: true}); err == nil {
		t.Error("expected error for shuffle without a random source")
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"bank.csv", FormatCSV, false},
		{"bank.CSV", FormatCSV, false},
		{"dir/science.xlsx", FormatXLSX, false},
		{"bank.txt", "", true},
		{"bank", "", true},
	}

	for _, tc := range tests {
		got, err := FormatForPath(tc.path)
		if (err != nil) != tc.wantErr {
			t.Errorf("FormatForPath(%q) err = %v, wantErr %v", tc.path, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("FormatForPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
