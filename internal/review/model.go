package review

import (
	"math"
	"time"
)

type Review struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"productId"`
	ProductName   string    `json:"productName"`
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	UserAvatarURL string    `json:"userAvatarUrl"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Input struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type ProductReviews struct {
	Reviews             []Review `json:"reviews"`
	TotalCount          int      `json:"totalCount"`
	AverageRating       float64  `json:"averageRating"`
	RatingDistribution1 int      `json:"ratingDistribution1"`
	RatingDistribution2 int      `json:"ratingDistribution2"`
	RatingDistribution3 int      `json:"ratingDistribution3"`
	RatingDistribution4 int      `json:"ratingDistribution4"`
	RatingDistribution5 int      `json:"ratingDistribution5"`
}

type AdminFilter struct {
	ProductID  int64
	Rating     int
	Search     string
	PageNumber int
	PageSize   int
}

type Page struct {
	Reviews    []Review `json:"reviews"`
	TotalCount int      `json:"totalCount"`
	PageNumber int      `json:"pageNumber"`
	PageSize   int      `json:"pageSize"`
	TotalPages int      `json:"totalPages"`
}

type Stats struct {
	TotalReviews        int     `json:"totalReviews"`
	AverageRating       float64 `json:"averageRating"`
	Rating1Count        int     `json:"rating1Count"`
	Rating2Count        int     `json:"rating2Count"`
	Rating3Count        int     `json:"rating3Count"`
	Rating4Count        int     `json:"rating4Count"`
	Rating5Count        int     `json:"rating5Count"`
	ReviewsThisMonth    int     `json:"reviewsThisMonth"`
	ReviewsThisYear     int     `json:"reviewsThisYear"`
	ProductsWithReviews int     `json:"productsWithReviews"`
}

// Summarize builds the product review summary. The average is rounded to two
// decimal places.
func Summarize(reviews []Review) ProductReviews {
	out := ProductReviews{Reviews: reviews, TotalCount: len(reviews)}
	if out.Reviews == nil {
		out.Reviews = []Review{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
		switch r.Rating {
		case 1:
			out.RatingDistribution1++
		case 2:
			out.RatingDistribution2++
		case 3:
			out.RatingDistribution3++
		case 4:
			out.RatingDistribution4++
		case 5:
			out.RatingDistribution5++
		}
	}
	if len(reviews) > 0 {
		out.AverageRating = Round2(float64(sum) / float64(len(reviews)))
	}
	return out
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
