package ecs

import "github.com/15mga/kecs/util"

const (
	// 每代31位, 最高位不用
	_MaxBitflag uint32 = 1 << 31
)

func newMaskStore(entityCap int) *maskStore {
	s := &maskStore{
		entityCap: entityCap,
	}
	s.addGeneration()
	return s
}

// maskStore 按代存储实体位掩码, words[generation][eid]
type maskStore struct {
	entityCap int
	words     [][]uint32
}

func (s *maskStore) generations() int {
	return len(s.words)
}

func (s *maskStore) addGeneration() {
	s.words = append(s.words, make([]uint32, s.entityCap))
}

func (s *maskStore) get(g int, eid Entity) uint32 {
	row := s.words[g]
	if int(eid) >= len(row) {
		return 0
	}
	return row[eid]
}

func (s *maskStore) has(g int, eid Entity, bitflag uint32) bool {
	return util.TestAllMask(s.get(g, eid), bitflag)
}

func (s *maskStore) add(g int, eid Entity, bitflag uint32) {
	row := s.testGrow(g, int(eid))
	row[eid] = util.MaskAddItem(bitflag, row[eid])
}

func (s *maskStore) del(g int, eid Entity, bitflag uint32) {
	row := s.words[g]
	if int(eid) >= len(row) {
		return
	}
	row[eid] = util.MaskDelItem(bitflag, row[eid])
}

func (s *maskStore) clear(eid Entity) {
	for _, row := range s.words {
		if int(eid) < len(row) {
			row[eid] = 0
		}
	}
}

func (s *maskStore) testGrow(g, i int) []uint32 {
	row := s.words[g]
	if i < len(row) {
		return row
	}
	c, _ := util.NextCap(i+1, len(row), 1<<16)
	nr := make([]uint32, c)
	copy(nr, row)
	s.words[g] = nr
	return nr
}

func (s *maskStore) rows() [][]uint32 {
	rows := make([][]uint32, len(s.words))
	for i, row := range s.words {
		r := make([]uint32, len(row))
		copy(r, row)
		rows[i] = r
	}
	return rows
}
