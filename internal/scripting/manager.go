package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Difficulty bounds exposed to scripts as titan.MIN_DIFFICULTY and
// titan.MAX_DIFFICULTY. They must equal check.MinDifficulty and
// check.MaxDifficulty; scripting cannot import check, and check's tests
// assert the two pairs agree.
const (
	MinDifficulty = 2
	MaxDifficulty = 6
)

// HookBeforeCheck is the global Lua function consulted before a check is built.
const HookBeforeCheck = "before_check"

// CheckInfo is a snapshot of a check request passed to before_check.
type CheckInfo struct {
	Kind         string
	Attribute    string
	Skill        string
	Resistance   string
	Attack       string
	Difficulty   int
	Complexity   int
	DiceMod      int
	TrainingMod  int
	ExpertiseMod int
}

// Adjustment is what before_check may return. Mods are additive; pointer
// fields replace the request's value when non-nil.
type Adjustment struct {
	DiceMod                int
	ExpertiseMod           int
	Difficulty             *int
	Complexity             *int
	DoubleExpertise        *bool
	ExtraSuccessOnCritical *bool
	ExtraFailureOnCritical *bool
}

// IsZero reports whether a leaves a request unchanged.
func (a Adjustment) IsZero() bool {
	return a == Adjustment{}
}

// Manager owns one sandboxed LState holding the loaded rule scripts.
//
// Manager is safe for concurrent use; hook calls are serialized because an
// LState is single-threaded.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	instLimit int
	logger    *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil; instLimit <= 0 uses DefaultInstructionLimit.
func NewManager(logger *zap.Logger, instLimit int) *Manager {
	return &Manager{logger: logger, instLimit: instLimit}
}

// Load creates a fresh VM, registers the titan module, then executes every
// *.lua file in dir in lexicographic order. A previously loaded VM is
// replaced only when the new one loads cleanly.
//
// Precondition: dir must be a readable directory.
func (m *Manager) Load(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	L := NewSandboxedState()
	m.RegisterModules(L)
	for _, path := range files {
		if err := RunLimited(L, m.instLimit, func() error { return L.DoFile(path) }); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.mu.Unlock()

	m.logger.Info("scripting: scripts loaded",
		zap.String("dir", dir),
		zap.Int("files", len(files)),
	)
	return nil
}

// Close releases the VM. The Manager behaves as unloaded afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if no
// scripts are loaded or the hook is not defined. Lua runtime errors,
// including an exhausted instruction budget, are logged at Warn level and
// never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callLocked(hook, args...), nil
}

func (m *Manager) callLocked(hook string, args ...lua.LValue) lua.LValue {
	if m.state == nil {
		return lua.LNil
	}
	L := m.state
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil
	}

	err := RunLimited(L, m.instLimit, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret
}

// BeforeCheck runs the before_check hook against info.
//
// Postcondition: Returns the zero Adjustment when no scripts are loaded, the
// hook is absent, errors at runtime, or returns nil; returns an error only
// when the returned table carries a field of the wrong type.
func (m *Manager) BeforeCheck(info CheckInfo) (Adjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return Adjustment{}, nil
	}

	ret := m.callLocked(HookBeforeCheck, infoTable(m.state, info))
	switch v := ret.(type) {
	case *lua.LTable:
		return readAdjustment(v)
	default:
		if ret != lua.LNil {
			m.logger.Warn("scripting: before_check returned a non-table value",
				zap.String("type", ret.Type().String()),
			)
		}
		return Adjustment{}, nil
	}
}

func infoTable(L *lua.LState, info CheckInfo) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "kind", lua.LString(info.Kind))
	L.SetField(t, "attribute", lua.LString(info.Attribute))
	L.SetField(t, "skill", lua.LString(info.Skill))
	L.SetField(t, "resistance", lua.LString(info.Resistance))
	L.SetField(t, "attack", lua.LString(info.Attack))
	L.SetField(t, "difficulty", lua.LNumber(info.Difficulty))
	L.SetField(t, "complexity", lua.LNumber(info.Complexity))
	L.SetField(t, "dice_mod", lua.LNumber(info.DiceMod))
	L.SetField(t, "training_mod", lua.LNumber(info.TrainingMod))
	L.SetField(t, "expertise_mod", lua.LNumber(info.ExpertiseMod))
	return t
}

func readAdjustment(t *lua.LTable) (Adjustment, error) {
	var adj Adjustment
	var err error
	if adj.DiceMod, err = optInt(t, "dice_mod"); err != nil {
		return Adjustment{}, err
	}
	if adj.ExpertiseMod, err = optInt(t, "expertise_mod"); err != nil {
		return Adjustment{}, err
	}
	if adj.Difficulty, err = ptrInt(t, "difficulty"); err != nil {
		return Adjustment{}, err
	}
	if adj.Complexity, err = ptrInt(t, "complexity"); err != nil {
		return Adjustment{}, err
	}
	if adj.DoubleExpertise, err = ptrBool(t, "double_expertise"); err != nil {
		return Adjustment{}, err
	}
	if adj.ExtraSuccessOnCritical, err = ptrBool(t, "extra_success_on_critical"); err != nil {
		return Adjustment{}, err
	}
	if adj.ExtraFailureOnCritical, err = ptrBool(t, "extra_failure_on_critical"); err != nil {
		return Adjustment{}, err
	}
	return adj, nil
}

func optInt(t *lua.LTable, field string) (int, error) {
	p, err := ptrInt(t, field)
	if err != nil || p == nil {
		return 0, err
	}
	return *p, nil
}

func ptrInt(t *lua.LTable, field string) (*int, error) {
	switch v := t.RawGetString(field).(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LNumber:
		n := int(v)
		return &n, nil
	default:
		return nil, fmt.Errorf("scripting: before_check field %q must be a number, got %s", field, v.Type())
	}
}

func ptrBool(t *lua.LTable, field string) (*bool, error) {
	switch v := t.RawGetString(field).(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		b := bool(v)
		return &b, nil
	default:
		return nil, fmt.Errorf("scripting: before_check field %q must be a boolean, got %s", field, v.Type())
	}
}
