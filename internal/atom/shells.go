package atom

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const orbitalLetters = "spdfghi"

// Subshell is an nl orbital.
type Subshell struct {
	N, L int
}

func (s Subshell) Label() string {
	return strconv.Itoa(s.N) + string(orbitalLetters[s.L])
}

// Capacity is the number of electrons a closed subshell holds.
func (s Subshell) Capacity() int {
	return 4*s.L + 2
}

func (s Subshell) String() string { return s.Label() }

// ParseSubshell reads labels such as "3p" or "4f".
func ParseSubshell(label string) (Subshell, error) {
	label = strings.TrimSpace(label)
	if len(label) < 2 {
		return Subshell{}, fmt.Errorf("atom: bad subshell label %q", label)
	}
	n, err := strconv.Atoi(label[:len(label)-1])
	if err != nil || n < 1 {
		return Subshell{}, fmt.Errorf("atom: bad subshell label %q", label)
	}
	l := strings.IndexByte(orbitalLetters, label[len(label)-1])
	if l < 0 || l >= n {
		return Subshell{}, fmt.Errorf("atom: bad subshell label %q", label)
	}
	return Subshell{N: n, L: l}, nil
}

// sequence orders subshells by n, then l: 1s, 2s, 2p, 3s, 3p, 3d, ...
var sequence []Subshell

// madelung orders subshells by filling: n+l, then n.
var madelung []Subshell

func init() {
	for n := 1; n <= 7; n++ {
		for l := 0; l < n && l < len(orbitalLetters); l++ {
			sequence = append(sequence, Subshell{N: n, L: l})
		}
	}
	madelung = slices.Clone(sequence)
	slices.SortStableFunc(madelung, func(a, b Subshell) int {
		if c := cmp.Compare(a.N+a.L, b.N+b.L); c != 0 {
			return c
		}
		return cmp.Compare(a.N, b.N)
	})
}

// groundExceptions holds ground configurations that break Madelung filling.
var groundExceptions = map[[2]int]string{
	{24, 0}: "1s02 2s02 2p06 3s02 3p06 3d05 4s01",
	{29, 0}: "1s02 2s02 2p06 3s02 3p06 3d10 4s01",
	{21, 1}: "1s02 2s02 2p06 3s02 3p06 3d01 4s01",
	{22, 1}: "1s02 2s02 2p06 3s02 3p06 3d02 4s01",
	{23, 1}: "1s02 2s02 2p06 3s02 3p06 3d04",
	{24, 1}: "1s02 2s02 2p06 3s02 3p06 3d05",
	{25, 1}: "1s02 2s02 2p06 3s02 3p06 3d05 4s01",
	{26, 1}: "1s02 2s02 2p06 3s02 3p06 3d06 4s01",
	{27, 1}: "1s02 2s02 2p06 3s02 3p06 3d08",
	{28, 1}: "1s02 2s02 2p06 3s02 3p06 3d09",
	{29, 1}: "1s02 2s02 2p06 3s02 3p06 3d10",
	{30, 1}: "1s02 2s02 2p06 3s02 3p06 3d10 4s01",
	{41, 0}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d04 5s01",
	{42, 0}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d05 5s01",
	{44, 0}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d07 5s01",
	{45, 0}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d08 5s01",
	{46, 0}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d10",
	{47, 0}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d10 5s01",
	{40, 1}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d02 5s01",
	{41, 1}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d04",
	{42, 1}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d05",
	{43, 1}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d05 5s01",
	{44, 1}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d07",
	{45, 1}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d08",
	{46, 1}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d09",
	{47, 1}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d10",
	{48, 1}: "1s02 2s02 2p06 3s02 3p06 3d10 4s02 4p06 4d10 5s01",
}

// groundOccupancy returns the ground-state occupation of charge state q of
// element z.
func groundOccupancy(z, q int) map[Subshell]int {
	if config, ok := groundExceptions[[2]int{z, q}]; ok {
		occupancy, err := ParseConfiguration(config)
		if err != nil {
			panic(err)
		}
		return occupancy
	}
	occupancy := make(map[Subshell]int)
	left := z - q
	for _, s := range madelung {
		if left == 0 {
			break
		}
		take := min(left, s.Capacity())
		occupancy[s] = take
		left -= take
	}
	// From q = 2 on, (n-1)d lies below ns along the K..Zn and Rb..Cd
	// isoelectronic sequences.
	if q >= 2 {
		for _, row := range []struct{ nMin, nMax, n int }{{19, 30, 4}, {37, 48, 5}} {
			if n := z - q; n < row.nMin || n > row.nMax {
				continue
			}
			s, d := Subshell{N: row.n, L: 0}, Subshell{N: row.n - 1, L: 2}
			moved := min(occupancy[s], d.Capacity()-occupancy[d])
			occupancy[s] -= moved
			occupancy[d] += moved
			if occupancy[s] == 0 {
				delete(occupancy, s)
			}
		}
	}
	return occupancy
}

// ParseConfiguration reads a configuration string of "nlNN" tokens, such as
// "2p06 3s01", into an occupation map.
func ParseConfiguration(config string) (map[Subshell]int, error) {
	occupancy := make(map[Subshell]int)
	for _, token := range strings.Fields(config) {
		cut := 0
		for cut < len(token) && token[cut] >= '0' && token[cut] <= '9' {
			cut++
		}
		if cut == 0 || cut >= len(token) {
			return nil, fmt.Errorf("atom: bad configuration token %q", token)
		}
		s, err := ParseSubshell(token[:cut+1])
		if err != nil {
			return nil, err
		}
		count := 1
		if rest := token[cut+1:]; rest != "" {
			if count, err = strconv.Atoi(rest); err != nil {
				return nil, fmt.Errorf("atom: bad occupancy in %q: %w", token, err)
			}
		}
		if count < 0 || count > s.Capacity() {
			return nil, fmt.Errorf("atom: occupancy %d of %s outside [0, %d]", count, s.Label(), s.Capacity())
		}
		occupancy[s] += count
	}
	return occupancy, nil
}

// Parity returns sum(l * occupancy) mod 2 for a configuration string.
func Parity(config string) (int, error) {
	occupancy, err := ParseConfiguration(config)
	if err != nil {
		return 0, err
	}
	return parity(occupancy), nil
}

func parity(occupancy map[Subshell]int) int {
	p := 0
	for s, count := range occupancy {
		p += s.L * count
	}
	return p % 2
}

func format(subshells []Subshell, occupancy map[Subshell]int) string {
	var b strings.Builder
	for _, s := range subshells {
		fmt.Fprintf(&b, "%s%02d ", s.Label(), occupancy[s])
	}
	return b.String()
}
