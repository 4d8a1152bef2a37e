// Package exporter renders enriched reviews as a marketplace import CSV.
package exporter

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"review-harvester/pkg/models"
	"review-harvester/pkg/utils"
)

// ErrInvalidReview is returned when a review cannot be represented in the CSV
var ErrInvalidReview = errors.New("invalid_review")

// Header is the first line of every export
const Header = "title,body,rating,review_date,reviewer_name,reviewer_email,product_url,picture_urls,product_id,product_handle"

const (
	rowTitle   = "Review"
	dateLayout = "02/01/2006"
	maxRating  = 5
)

// ToCSV renders the reviews into a CSV document
func ToCSV(reviews []models.Review, productURL string, r utils.Rand, now time.Time) (string, error) {
	var b strings.Builder
	if err := WriteCSV(&b, reviews, productURL, r, now); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteCSV streams the CSV document to w. Every review is validated before
// anything is written, so a failed export leaves w untouched.
func WriteCSV(w io.Writer, reviews []models.Review, productURL string, r utils.Rand, now time.Time) error {
	for i, review := range reviews {
		if review.Rating < 0 || review.Rating > maxRating {
			return fmt.Errorf("%w: review %d has rating %d", ErrInvalidReview, i, review.Rating)
		}
	}

	if _, err := io.WriteString(w, Header+"\n"); err != nil {
		return err
	}

	for _, review := range reviews {
		if _, err := io.WriteString(w, row(review, productURL, RandomReviewDate(r, now))+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func row(review models.Review, productURL string, date time.Time) string {
	fields := []string{
		rowTitle,
		quote(review.Text),
		strconv.Itoa(review.Rating),
		date.Format(dateLayout),
		quote(review.Name),
		"",
		quote(productURL),
		quote(strings.Join(review.Images, ", ")),
		"",
		"",
	}
	return strings.Join(fields, ",")
}

// quote wraps non-empty values in double quotes, doubling embedded quotes.
// Empty values stay bare.
func quote(value string) string {
	if value == "" {
		return ""
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// RandomReviewDate picks a moment uniformly between the first of January 2024
// (in now's location) and now. If now is earlier, the start date is returned.
func RandomReviewDate(r utils.Rand, now time.Time) time.Time {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, now.Location())
	span := now.Sub(start)
	if span <= 0 {
		return start
	}
	return start.Add(time.Duration(r.Int64N(int64(span) + 1)))
}
