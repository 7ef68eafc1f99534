package engine

import "termtactoe/types"

// Player is one of the two people sharing the keyboard.
type Player struct {
	name  string
	score int
}

func NewPlayer(name string) *Player {
	return &Player{name: name}
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) Score() int {
	return p.score
}

// AddPoint records one won board.
func (p *Player) AddPoint() {
	p.score++
}

func (p *Player) State() types.PlayerState {
	return types.PlayerState{Name: p.name, Score: p.score}
}
