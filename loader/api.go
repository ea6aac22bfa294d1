package loader

import (
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/questline/types"
)

// registerAPI registers the bundle constructors and helpers as globals.
func registerAPI(L *lua.LState, raw *rawBundle) {
	registerConstructors(L, raw)
	registerRequirementHelpers(L)
}

func registerConstructors(L *lua.LState, raw *rawBundle) {
	// Bundle { language = "en", title = "...", info = "..." }
	L.SetGlobal("Bundle", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		raw.declared = true
		raw.language = getString(tbl, "language")
		raw.title = getString(tbl, "title")
		raw.info = getString(tbl, "info")
		return 0
	}))

	// Navigation { patterns = {...}, synonyms = { north = {"n"} } }
	// Repeated calls append patterns and synonyms.
	L.SetGlobal("Navigation", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		raw.navPatterns = append(raw.navPatterns, tableToStrings(getTable(tbl, "patterns"))...)
		raw.synonyms = append(raw.synonyms, compileSynonyms(getTable(tbl, "synonyms"))...)
		return 0
	}))

	// Action "name" { pattern = "...", objects = {...} }, curried.
	L.SetGlobal("Action", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			raw.actions = append(raw.actions, rawAction{
				name:    name,
				pattern: getString(tbl, "pattern"),
				objects: tableToStrings(getTable(tbl, "objects")),
			})
			return 0
		}))
		return 1
	}))

	// Chapter "id" { text = "...", requires = Go "north", answers = {...},
	// interactions = {...} }, curried.
	L.SetGlobal("Chapter", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			raw.chapters = append(raw.chapters, rawChapter{
				id:           id,
				text:         getString(tbl, "text"),
				requires:     compileRequirement(getTable(tbl, "requires")),
				answers:      getAnswers(tbl),
				interactions: tableToStringMap(getTable(tbl, "interactions")),
			})
			return 0
		}))
		return 1
	}))

	// Messages { ["Try again"] = "..." }, merged across calls.
	L.SetGlobal("Messages", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		for k, v := range tableToStringMap(tbl) {
			raw.messages[k] = v
		}
		return 0
	}))
}

func registerRequirementHelpers(L *lua.LState) {
	// Go("north")
	L.SetGlobal("Go", L.NewFunction(func(L *lua.LState) int {
		dir := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(types.RequireNavigation))
		tbl.RawSetString("direction", lua.LString(dir))
		L.Push(tbl)
		return 1
	}))

	// Do("open", "mailbox"); the object is optional.
	L.SetGlobal("Do", L.NewFunction(func(L *lua.LState) int {
		action := L.CheckString(1)
		object := L.OptString(2, "")
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(types.RequireAction))
		tbl.RawSetString("action", lua.LString(action))
		if object != "" {
			tbl.RawSetString("object", lua.LString(object))
		}
		L.Push(tbl)
		return 1
	}))
}

// compileSynonyms reads { canonical = {aliases...} }. Lua tables carry no
// key order, so canonical directions are sorted.
func compileSynonyms(tbl *lua.LTable) []types.Synonym {
	if tbl == nil {
		return nil
	}
	byDir := map[string][]string{}
	var dirs []string
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		aliases, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		dirs = append(dirs, string(ks))
		byDir[string(ks)] = tableToStrings(aliases)
	})
	sort.Strings(dirs)

	synonyms := make([]types.Synonym, 0, len(dirs))
	for _, d := range dirs {
		synonyms = append(synonyms, types.Synonym{Canonical: d, Aliases: byDir[d]})
	}
	return synonyms
}
