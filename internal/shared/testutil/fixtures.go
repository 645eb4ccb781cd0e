package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"campuspulse/pkg/contracts/domain"
)

// SurveyCSV is a small survey export covering every sentiment label,
// a defaulted date and a non-numeric rating.
const SurveyCSV = `Name,Facility,Department,Year,Rating,Comment,Date
Aisha Karim,Library,Computer Science,2,5,Great quiet space and very clean,2025-02-03
Omar Haddad,Gym,Engineering,3,2,Equipment is old and the showers are leaking,2025-02-04
Lena Brandt,Library,Arts,1,4,,2025-02-05
Yusuf Ali,Cafeteria,Engineering,2,n/a,Food is overpriced,
`

// SurveyCSVRecords is the number of data rows in SurveyCSV.
const SurveyCSVRecords = 4

// SampleRecords returns normalized records spanning three facilities.
func SampleRecords() []domain.Record {
	return []domain.Record{
		{Name: "Aisha", Facility: "Library", Department: "CS", Year: "2", Rating: 5, Comment: "great", Sentiment: domain.SentimentPositive, Date: "2025-02-03"},
		{Name: "Omar", Facility: "Gym", Department: "Engineering", Year: "3", Rating: 2, Comment: "old", Sentiment: domain.SentimentNegative, Date: "2025-02-04"},
		{Name: "Lena", Facility: "Library", Department: "Arts", Year: "1", Rating: 3, Sentiment: domain.SentimentNeutral, Date: domain.DefaultDate},
	}
}

// WriteFile writes content to name inside a fresh temp directory and
// returns the full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// ServeDocument starts a server answering every request with status and body.
// It is closed when the test ends.
func ServeDocument(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}
