package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the titan global table into L:
//
//	titan.log(msg)                 debug log through the manager's logger
//	titan.clamp(v, lo, hi)         clamps v into [lo, hi]
//	titan.MIN_DIFFICULTY, titan.MAX_DIFFICULTY
func (m *Manager) RegisterModules(L *lua.LState) {
	titan := L.NewTable()
	L.SetField(titan, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Debug("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetField(titan, "clamp", L.NewFunction(func(L *lua.LState) int {
		v, lo, hi := L.CheckInt(1), L.CheckInt(2), L.CheckInt(3)
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		L.Push(lua.LNumber(v))
		return 1
	}))
	L.SetField(titan, "MIN_DIFFICULTY", lua.LNumber(MinDifficulty))
	L.SetField(titan, "MAX_DIFFICULTY", lua.LNumber(MaxDifficulty))
	L.SetGlobal("titan", titan)
}
