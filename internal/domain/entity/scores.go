package entity

// NoClass индекс, который остаётся выбранным, если ни одна оценка не больше 0.
const NoClass = -1

// ArgMax выбирает класс с наибольшей оценкой. Сравнение строгое, поэтому при
// равенстве побеждает первый класс. Начальные значения: индекс -1, оценка 0,
// так что при всех оценках <= 0 возвращается NoClass.
func ArgMax(scores []float32) (index int, score float32) {
	index = NoClass
	for i, s := range scores {
		if s > score {
			score = s
			index = i
		}
	}
	return index, score
}
