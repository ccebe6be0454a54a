package model

import "testing"

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		text string
		want uint64
	}{
		{"seconds only", "2024-01-01 10:00:00", 1704103200000},
		{"with millis", "2024-01-01 10:00:00.123", 1704103200123},
		{"single digit millis", "2024-01-01 10:00:00.5", 1704103200005},
		{"surrounding whitespace", "  2024-01-01 10:00:00.001 ", 1704103200001},
		{"epoch", "1970-01-01 00:00:00", 0},
		{"malformed", "not a time", 0},
		{"empty", "", 0},
		{"bad millis keeps seconds", "2024-01-01 10:00:00.abc", 1704103200000},
		{"date only", "2024-01-01", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTimestamp(tt.text)
			if got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		line string
		want Encoding
	}{
		{"Symbol, Timestamp, Price, Size, Exchange, Type", EncodingRaw},
		{"Symbol,Timestamp", EncodingRaw},
		{"  Symbol ,x", EncodingRaw},
		{"Timestamp, Price, Size, Exchange, Type", EncodingIntermediate},
		{"2024-01-01 10:00:00, 1.0, 10, NYSE, T", EncodingIntermediate},
		{"symbol, Timestamp", EncodingIntermediate}, // Case-sensitive
		{"", EncodingIntermediate},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := DetectEncoding(tt.line); got != tt.want {
				t.Errorf("DetectEncoding(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestIsHeader(t *testing.T) {
	if !IsHeader(Header) {
		t.Errorf("IsHeader(%q) = false, want true", Header)
	}
	if !IsHeader("Timestamp, Price, Size, Exchange, Type") {
		t.Error("intermediate header not recognised")
	}
	if IsHeader("2024-01-01 10:00:00, 1.0, 10, NYSE, T") {
		t.Error("data line recognised as header")
	}
}

func TestSymbolFromName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"AAPL.txt", "AAPL"},
		{"data/MSFT.csv", "MSFT"},
		{"/abs/path/BRK.B.txt", "BRK.B"},
		{"NOEXT", "NOEXT"},
		{"INTER_ab12-0_1704103200000", "INTER_ab12-0_1704103200000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SymbolFromName(tt.name); got != tt.want {
				t.Errorf("SymbolFromName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseLine_Raw(t *testing.T) {
	rec, ok := ParseLine("AAPL, 2024-01-01 10:00:00.250, 187.5, 100, NASDAQ, TRADE", "ignored.txt", EncodingRaw)
	if !ok {
		t.Fatal("ParseLine returned false")
	}

	want := Record{
		Symbol:        "AAPL",
		Timestamp:     1704103200250,
		TimestampText: "2024-01-01 10:00:00.250",
		Price:         "187.5",
		Size:          "100",
		Exchange:      "NASDAQ",
		Type:          "TRADE",
	}
	if rec != want {
		t.Errorf("ParseLine() = %+v, want %+v", rec, want)
	}
}

func TestParseLine_Intermediate(t *testing.T) {
	rec, ok := ParseLine("2024-01-01 09:00:00,2.0,20,NYSE,T", "/data/BBB.csv", EncodingIntermediate)
	if !ok {
		t.Fatal("ParseLine returned false")
	}

	if rec.Symbol != "BBB" {
		t.Errorf("Symbol = %q, want %q", rec.Symbol, "BBB")
	}
	if rec.Timestamp != 1704099600000 {
		t.Errorf("Timestamp = %d, want %d", rec.Timestamp, 1704099600000)
	}
	if rec.Price != "2.0" || rec.Size != "20" || rec.Exchange != "NYSE" || rec.Type != "T" {
		t.Errorf("fields = %q %q %q %q, want 2.0 20 NYSE T", rec.Price, rec.Size, rec.Exchange, rec.Type)
	}
}

func TestParseLine_Empty(t *testing.T) {
	for _, line := range []string{"", "   ", "\r", "\t\n"} {
		if _, ok := ParseLine(line, "A.txt", EncodingRaw); ok {
			t.Errorf("ParseLine(%q) = ok, want absent", line)
		}
	}
}

func TestParseLine_ShortLine(t *testing.T) {
	rec, ok := ParseLine("AAPL, 2024-01-01 10:00:00", "", EncodingRaw)
	if !ok {
		t.Fatal("ParseLine returned false")
	}
	if rec.Price != "" || rec.Type != "" {
		t.Errorf("missing fields = %q/%q, want empty", rec.Price, rec.Type)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	lines := []string{
		"AAPL,  2024-01-01 10:00:00.250 ,187.5,100,NASDAQ,TRADE",
		"MSFT, 2023-12-31 23:59:59, 370.1, 5, ARCA, Q",
		"ZZZ, garbage, , , , ",
	}

	for _, line := range lines {
		first, ok := ParseLine(line, "", EncodingRaw)
		if !ok {
			t.Fatalf("ParseLine(%q) returned false", line)
		}
		second, ok := ParseLine(first.Encode(), "", EncodingRaw)
		if !ok {
			t.Fatalf("ParseLine(%q) returned false", first.Encode())
		}
		if first != second {
			t.Errorf("round trip of %q: got %+v, want %+v", line, second, first)
		}
	}
}

func TestEncode(t *testing.T) {
	rec := Record{Symbol: "AAA", TimestampText: "2024-01-01 10:00:00", Price: "1.0", Size: "10", Exchange: "NYSE", Type: "T"}
	want := "AAA, 2024-01-01 10:00:00, 1.0, 10, NYSE, T"
	if got := rec.Encode(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestLess(t *testing.T) {
	early := Record{Symbol: "ZZZ", Timestamp: 1}
	late := Record{Symbol: "AAA", Timestamp: 2}
	aapl := Record{Symbol: "AAPL", Timestamp: 5}
	msft := Record{Symbol: "MSFT", Timestamp: 5}

	if !Less(early, late) {
		t.Error("earlier timestamp should sort first regardless of symbol")
	}
	if Less(late, early) {
		t.Error("later timestamp sorted first")
	}
	if !Less(aapl, msft) {
		t.Error("AAPL should sort before MSFT on equal timestamps")
	}
	if Less(aapl, aapl) {
		t.Error("Less must be irreflexive")
	}
}
