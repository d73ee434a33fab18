package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizPaperKey returns the cache key for a quiz's student-facing paper payload.
func (r *CacheKeyStruct) QuizPaperKey(quizID uuid.UUID) string {
	return fmt.Sprintf("quiz:%s:paper", quizID)
}

var CacheKey = NewCacheKeyStruct()
