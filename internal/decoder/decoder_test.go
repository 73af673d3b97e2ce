package decoder

import (
	"testing"

	"github.com/verte-zerg/signglove/internal/vocab"
)

func TestDecodeRecognizedWord(t *testing.T) {
	res := Decode([]string{"H", "I"}, vocab.Default())
	if !res.Recognized || res.Word != "HI" {
		t.Fatalf("expected HI recognized, got %+v", res)
	}
	if res.String() != "Recognized Word: HI" {
		t.Fatalf("unexpected rendering %q", res.String())
	}
}

func TestDecodeUnknownLetters(t *testing.T) {
	res := Decode([]string{"Z", "Q"}, vocab.Default())
	if res.Recognized || res.Word != "" {
		t.Fatalf("ZQ should not be recognized: %+v", res)
	}
	if res.String() != "Recognized Letters (not a valid word): Z Q" {
		t.Fatalf("unexpected rendering %q", res.String())
	}
}

func TestDecodeUpperCasesLetters(t *testing.T) {
	res := Decode([]string{"h", "i"}, vocab.Default())
	if !res.Recognized || res.Word != "HI" {
		t.Fatalf("expected lower-case letters to decode to HI, got %+v", res)
	}
	if res.String() != "Recognized Word: HI" {
		t.Fatalf("unexpected rendering %q", res.String())
	}
	if res.Letters[0] != "h" {
		t.Fatalf("letters should be kept as entered, got %v", res.Letters)
	}
}

func TestDecodeEmpty(t *testing.T) {
	res := Decode(nil, vocab.Default())
	if res.Recognized || res.Word != "" || len(res.Letters) != 0 {
		t.Fatalf("empty sequence should not be recognized: %+v", res)
	}
}

func TestDecodeCustomVocabulary(t *testing.T) {
	v := vocab.New([]string{"wave"})
	if !Decode([]string{"W", "A", "V", "E"}, v).Recognized {
		t.Fatalf("expected WAVE in custom vocabulary")
	}
	if Decode([]string{"H", "I"}, v).Recognized {
		t.Fatalf("HI should not be in custom vocabulary")
	}
}

func TestSequenceDecodeResets(t *testing.T) {
	var s Sequence
	s.Append("N")
	s.Append("O")
	if s.Prefix() != "NO" || s.Len() != 2 {
		t.Fatalf("unexpected sequence %v", s.Letters())
	}
	letters := s.Letters()
	letters[0] = "X"
	if s.Prefix() != "NO" {
		t.Fatalf("Letters must return a copy")
	}
	res := s.Decode(vocab.Default())
	if !res.Recognized || res.Word != "NO" {
		t.Fatalf("expected NO, got %+v", res)
	}
	if s.Len() != 0 {
		t.Fatalf("sequence should be empty after decode")
	}
}
