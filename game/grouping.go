package game

import (
	"math/rand"
	"sync"
	"time"
)

// GroupSizes разбивает n активных игроков на группы. Базовый размер
// группы 4, остаток добирается до групп по 5 или отдельной группы из 3.
// При base == 0 (и при нехватке четвёрок под остаток 1 или 2) все игроки
// попадают в одну группу размера n.
func GroupSizes(n int) []int {
	base := n / 4
	rem := n % 4

	if base == 0 {
		return []int{n}
	}

	switch rem {
	case 0:
		return repeat(4, base)
	case 1:
		// пример: 9 -> одна группа по 4 + одна по 5
		if base >= 1 {
			return append(repeat(4, base-1), 5)
		}
		return []int{n}
	case 2:
		// пример: 10 -> две группы по 5
		if base >= 2 {
			return append(repeat(4, base-2), 5, 5)
		}
		return []int{n}
	default: // rem == 3, пример: 11 -> две группы по 4 + одна по 3
		return append(repeat(4, base), 3)
	}
}

func repeat(size, count int) []int {
	sizes := make([]int, count)
	for i := range sizes {
		sizes[i] = size
	}
	return sizes
}

// Pairings возвращает все неупорядоченные пары участников группы:
// полный круговой турнир, C(len(ids), 2) матчей.
func Pairings(ids []int) [][2]int {
	pairs := make([][2]int, 0, len(ids)*(len(ids)-1)/2)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			pairs = append(pairs, [2]int{ids[i], ids[j]})
		}
	}
	return pairs
}

// Shuffler изолирует единственный источник недетерминизма при нарезке
// групп, чтобы разбиение можно было тестировать детерминированно.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type randShuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewShuffler возвращает равномерный случайный Shuffler.
func NewShuffler() Shuffler {
	return &randShuffler{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *randShuffler) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(n, swap)
}
