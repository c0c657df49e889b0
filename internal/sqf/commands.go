package sqf

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed commands.toml
var commandsTOML []byte

// Arity classes a command by how many operands it takes, mirroring
// the game's own nular/unary/binary command shapes.
type Arity int

const (
	Nular Arity = iota
	Unary
	Binary
)

// Command is one entry of the command database: its canonical (wiki)
// case, its arity, and the game version it was introduced in.
type Command struct {
	Name  string `toml:"name"`
	Arity Arity
	Since float64 `toml:"since"`
}

type rawCommand struct {
	Name  string  `toml:"name"`
	Arity string  `toml:"arity"`
	Since float64 `toml:"since"`
}

type commandFile struct {
	Command []rawCommand `toml:"command"`
}

var (
	dbOnce sync.Once
	db     map[string]Command // keyed by lowercased name
)

// Commands returns the process-wide command database, loaded once
// behind a sync.Once: lazily, and read-only thereafter so concurrent
// analyzer goroutines never race on first use.
func Commands() map[string]Command {
	dbOnce.Do(loadCommands)
	return db
}

func loadCommands() {
	var raw commandFile
	if err := toml.Unmarshal(commandsTOML, &raw); err != nil {
		panic("sqf: embedded command database is malformed: " + err.Error())
	}
	db = make(map[string]Command, len(raw.Command))
	for _, c := range raw.Command {
		var arity Arity
		switch strings.ToLower(c.Arity) {
		case "nular":
			arity = Nular
		case "unary":
			arity = Unary
		case "binary":
			arity = Binary
		}
		db[strings.ToLower(c.Name)] = Command{Name: c.Name, Arity: arity, Since: c.Since}
	}
}

// Lookup finds a command by case-insensitive name.
func Lookup(name string) (Command, bool) {
	c, ok := Commands()[strings.ToLower(name)]
	return c, ok
}
