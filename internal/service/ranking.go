package service

import (
	"sort"

	"filmorate-service/internal/domain"
)

// DefaultPopularCount - размер топа, если count не задан или не положителен.
const DefaultPopularCount = 10

// RankByLikes сортирует фильмы по числу лайков по убыванию, при равенстве по ID
// по возрастанию, и возвращает первые count. Входной слайс не меняется.
func RankByLikes(films []domain.Film, count int) []domain.Film {
	if count <= 0 {
		count = DefaultPopularCount
	}
	ranked := make([]domain.Film, len(films))
	copy(ranked, films)
	sort.SliceStable(ranked, func(i, j int) bool {
		li, lj := ranked[i].LikeCount(), ranked[j].LikeCount()
		if li != lj {
			return li > lj
		}
		return ranked[i].ID < ranked[j].ID
	})
	if count < len(ranked) {
		ranked = ranked[:count]
	}
	return ranked
}
