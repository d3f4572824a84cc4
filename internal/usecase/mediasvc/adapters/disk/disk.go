package disk

// Stats — ёмкость тома в байтах.
type Stats struct {
	FreeBytes  uint64
	TotalBytes uint64
}

// StatfsProbe определяет свободное место тома средствами ОС.
type StatfsProbe struct{}

// NewStatfsProbe инициализирует адаптер свободного места.
func NewStatfsProbe() *StatfsProbe {
	return &StatfsProbe{}
}

// Available возвращает число байт, доступных непривилегированному процессу.
func (StatfsProbe) Available(path string) (uint64, error) {
	st, err := Stat(path)
	if err != nil {
		return 0, err
	}
	return st.FreeBytes, nil
}
