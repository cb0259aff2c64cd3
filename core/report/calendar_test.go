package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHijri(t *testing.T) {
	tests := []struct {
		date                  time.Time
		wantY, wantM, wantDay int
	}{
		{time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), 1445, 9, 1},
		{time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC), 1445, 8, 29},
		{time.Date(2023, 7, 19, 12, 0, 0, 0, time.UTC), 1445, 1, 1},
		{time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 1420, 9, 24},
	}
	for _, tt := range tests {
		t.Run(tt.date.Format("2006-01-02"), func(t *testing.T) {
			y, m, d := Hijri(tt.date)
			assert.Equal(t, [3]int{tt.wantY, tt.wantM, tt.wantDay}, [3]int{y, m, d})
		})
	}
}

func TestArabicDate(t *testing.T) {
	at := time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "١ رمضان ١٤٤٥ هـ", ArabicDate(at))
	assert.Equal(t, "3/11/2024", EnglishDate(at))
	assert.Equal(t, "٠١٢٣٤٥٦٧٨٩ abc", ArabicDigits("0123456789 abc"))
}

func TestShaping(t *testing.T) {
	assert.True(t, HasArabic("Ahmed أحمد"))
	assert.False(t, HasArabic("Ahmed 123"))
	assert.Equal(t, "Ahmed", ArabicShaper("Ahmed"))
	assert.NotEqual(t, "مرحبا", ArabicShaper("مرحبا"))
}
