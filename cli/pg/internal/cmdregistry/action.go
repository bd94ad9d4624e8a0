package cmdregistry

import (
	"fmt"
	"sort"
)

// Action is one of pg's actions. The set is closed: every value below has a
// spec and must have a registered handler.
type Action int

const (
	Configure Action = iota
	CreateVirtualenv
	FetchPgSource
	GetShellFunction
	Help
	InitDB
	Install
	List
	Log
	Make
	MakeCheck
	MakeClean
	Restart
	RmData
	RmVirtualenv
	Start
	Status
	Stop
	Workon

	actionCount
)

// Unlimited as MaxArgs accepts any number of positional arguments.
const Unlimited = -1

// Spec describes how an action is invoked.
type Spec struct {
	Name  string
	Alias string
	Short string
	// Args is shown in the usage text.
	Args    string
	MinArgs int
	MaxArgs int
}

var specs = [actionCount]Spec{
	Configure:        {Name: "configure", Alias: "c", Short: "Run ./configure in the source tree of the current pg_venv", Args: "[<configure args>...]", MaxArgs: Unlimited},
	CreateVirtualenv: {Name: "create_virtualenv", Alias: "create", Short: "Fetch, build, install, initdb, start and createdb a new pg_venv", Args: "<pg_venv>", MinArgs: 1, MaxArgs: 1},
	FetchPgSource:    {Name: "fetch_pg_source", Short: "Fetch a new copy of PostgreSQL's source code", Args: "[<pg_venv>]", MaxArgs: 1},
	GetShellFunction: {Name: "get_shell_function", Short: "Print the pg() shell function to source in your shell", MaxArgs: 0},
	Help:             {Name: "help", Alias: "h", Short: "Display this help text", MaxArgs: 0},
	InitDB:           {Name: "initdb", Short: "Initialize the data directory", Args: "[<pg_venv>]", MaxArgs: 1},
	Install:          {Name: "install", Alias: "i", Short: "Run make install in the source tree of the current pg_venv", MaxArgs: 0},
	List:             {Name: "list", Alias: "ls", Short: "List pg_venvs with their port, version and state", MaxArgs: 0},
	Log:              {Name: "log", Alias: "l", Short: "Show the server log", Args: "[<pg_venv>]", MaxArgs: 1},
	Make:             {Name: "make", Alias: "m", Short: "Run make in the source tree of the current pg_venv", Args: "[<make args>...]", MaxArgs: Unlimited},
	MakeCheck:        {Name: "make_check", Alias: "mk", Short: "Run make check in the source tree of the current pg_venv", MaxArgs: 0},
	MakeClean:        {Name: "make_clean", Alias: "mc", Short: "Run make clean in the source tree of the current pg_venv", MaxArgs: 0},
	Restart:          {Name: "restart", Short: "Stop the server if it runs, then start it", Args: "[<pg_venv>]", MaxArgs: 1},
	RmData:           {Name: "rm_data", Alias: "rmdata", Short: "Delete the content of the data directory", Args: "[<pg_venv>]", MaxArgs: 1},
	RmVirtualenv:     {Name: "rm_virtualenv", Alias: "rmvenv", Short: "Delete a pg_venv entirely", Args: "[<pg_venv>]", MaxArgs: 1},
	Start:            {Name: "start", Short: "Start the server", Args: "[<pg_venv>]", MaxArgs: 1},
	Status:           {Name: "status", Alias: "st", Short: "Show whether the server runs and what it reports", Args: "[<pg_venv>]", MaxArgs: 1},
	Stop:             {Name: "stop", Short: "Stop the server", Args: "[<pg_venv>]", MaxArgs: 1},
	Workon:           {Name: "workon", Alias: "w", Short: "Print the statements activating a pg_venv in the shell", Args: "<pg_venv>", MinArgs: 1, MaxArgs: 1},
}

var byToken = func() map[string]Action {
	m := make(map[string]Action, 2*int(actionCount))
	for a := Action(0); a < actionCount; a++ {
		s := specs[a]
		m[s.Name] = a
		if s.Alias != "" {
			m[s.Alias] = a
		}
	}
	return m
}()

// Actions returns every action sorted by name.
func Actions() []Action {
	out := make([]Action, 0, actionCount)
	for a := Action(0); a < actionCount; a++ {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return specs[out[i]].Name < specs[out[j]].Name })
	return out
}

// Parse resolves an action name or alias.
func Parse(token string) (Action, bool) {
	a, ok := byToken[token]
	return a, ok
}

func (a Action) Spec() Spec {
	if a < 0 || a >= actionCount {
		return Spec{Name: fmt.Sprintf("action(%d)", int(a))}
	}
	return specs[a]
}

func (a Action) String() string { return a.Spec().Name }

// CheckArgs validates the number of positional arguments.
func (s Spec) CheckArgs(n int) error {
	if n < s.MinArgs || (s.MaxArgs != Unlimited && n > s.MaxArgs) {
		return &UsageError{Action: s.Name, Err: fmt.Errorf("%s takes %s, got %d argument(s)", s.Name, s.arity(), n)}
	}
	return nil
}

func (s Spec) arity() string {
	switch {
	case s.MaxArgs == Unlimited:
		return fmt.Sprintf("at least %d argument(s)", s.MinArgs)
	case s.MinArgs == s.MaxArgs:
		return fmt.Sprintf("exactly %d argument(s)", s.MinArgs)
	default:
		return fmt.Sprintf("%d to %d argument(s)", s.MinArgs, s.MaxArgs)
	}
}

// UsageError reports arguments or flags an action does not understand.
type UsageError struct {
	Action string
	Err    error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }
