package services

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"not youtube", "https://example.com/watch?v=dQw4w9WgXcQ", "", true},
		{"garbage", "not a url", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractVideoID(tc.url)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tc.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractVideoID(%q) failed: %v", tc.url, err)
			}
			if got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExtractCaptionURL(t *testing.T) {
	pageHTML := `{"captionTracks":[{"baseUrl":"https:\/\/www.youtube.com\/api\/timedtext?v=abc&lang=en","name":"English"}],"other":1}`

	u, err := extractCaptionURL(pageHTML)
	if err != nil {
		t.Fatalf("extractCaptionURL failed: %v", err)
	}

	want := "https://www.youtube.com/api/timedtext?v=abc&lang=en"
	if u != want {
		t.Errorf("Expected %q, got %q", want, u)
	}
}

func TestExtractCaptionURLNoCaptions(t *testing.T) {
	if _, err := extractCaptionURL("<html>no captions here</html>"); err == nil {
		t.Error("Expected error when page has no caption tracks")
	}
}

func TestParseCaptionsXML(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
	<text start="0" dur="2">Hello &amp; welcome</text>
	<text start="2" dur="2">  </text>
	<text start="4" dur="2">to the lecture</text>
</transcript>`)

	got, err := parseCaptionsXML(data)
	if err != nil {
		t.Fatalf("parseCaptionsXML failed: %v", err)
	}

	want := "Hello & welcome to the lecture"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestParseCaptionsXMLEmpty(t *testing.T) {
	if _, err := parseCaptionsXML([]byte(`<transcript></transcript>`)); err == nil {
		t.Error("Expected error for empty transcript")
	}
}
