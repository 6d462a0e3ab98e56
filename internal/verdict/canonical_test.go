package verdict

import (
	"testing"

	"patcheck/internal/factset"
	"patcheck/internal/pattern"
)

// Canonical fact sets: one hand-written minimal structure per builtin
// template, mirroring the textbook rendition of each pattern. Every one
// of them must verify as a pass against its template.

func m(name string, arity int, returns factset.ReturnCategory) factset.Member {
	return factset.Member{Name: name, Kind: factset.KindMethod, Arity: arity, Returns: returns, Public: true}
}

func canonicalFacts() map[string]*factset.FactSet {
	sets := make(map[string]*factset.FactSet)

	// creational

	fs := factset.New("abstract-factory")
	fs.AddType(&factset.TypeFact{Name: "WidgetFactory", Abstract: true, Members: []factset.Member{m("createButton", 0, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "DarkWidgetFactory", Supertypes: []string{"WidgetFactory"}, Members: []factset.Member{m("createButton", 0, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "Button", Abstract: true, Members: []factset.Member{m("paint", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "DarkButton", Supertypes: []string{"Button"}, Members: []factset.Member{m("paint", 0, factset.ReturnNone)}})
	fs.AddCall("DarkWidgetFactory", "createButton", "DarkButton", "", factset.CallConstruct)
	sets["abstract-factory"] = fs

	fs = factset.New("builder")
	fs.AddType(&factset.TypeFact{Name: "HouseBuilder", Abstract: true, Members: []factset.Member{m("buildWall", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "StoneHouseBuilder", Supertypes: []string{"HouseBuilder"}, Members: []factset.Member{
		m("buildWall", 0, factset.ReturnNone),
		m("getResult", 0, factset.ReturnValue),
	}})
	fs.AddType(&factset.TypeFact{Name: "Foreman", References: []string{"HouseBuilder"}, Members: []factset.Member{m("construct", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "House", Members: []factset.Member{m("describe", 0, factset.ReturnValue)}})
	fs.AddCall("Foreman", "construct", "HouseBuilder", "buildWall", factset.CallInvoke)
	fs.AddCall("StoneHouseBuilder", "getResult", "House", "", factset.CallConstruct)
	sets["builder"] = fs

	fs = factset.New("factory-method")
	fs.AddType(&factset.TypeFact{Name: "Dialog", Abstract: true, Members: []factset.Member{m("render", 0, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "WebDialog", Supertypes: []string{"Dialog"}, Members: []factset.Member{m("render", 0, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "Widget", Abstract: true, Members: []factset.Member{m("draw", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "WebButton", Supertypes: []string{"Widget"}, Members: []factset.Member{m("draw", 0, factset.ReturnNone)}})
	fs.AddCall("WebDialog", "render", "WebButton", "", factset.CallConstruct)
	sets["factory-method"] = fs

	fs = factset.New("prototype")
	fs.AddType(&factset.TypeFact{Name: "Shape", Abstract: true, Members: []factset.Member{m("clone", 0, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "Circle", Supertypes: []string{"Shape"}, Members: []factset.Member{m("clone", 0, factset.ReturnValue)}})
	fs.AddCall("Circle", "clone", "Circle", "", factset.CallConstruct)
	sets["prototype"] = fs

	fs = factset.New("singleton")
	fs.AddType(&factset.TypeFact{Name: "Config", References: []string{"Config"}, Members: []factset.Member{m("getInstance", 0, factset.ReturnValue)}})
	fs.AddCall("Config", "getInstance", "Config", "", factset.CallConstruct)
	sets["singleton"] = fs

	// structural

	fs = factset.New("adapter")
	fs.AddType(&factset.TypeFact{Name: "Target", Abstract: true, Members: []factset.Member{m("request", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "Adaptee", Members: []factset.Member{m("specificRequest", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "Adapter", Supertypes: []string{"Target"}, References: []string{"Adaptee"}, Members: []factset.Member{m("request", 0, factset.ReturnNone)}})
	fs.AddCall("Adapter", "request", "Adaptee", "specificRequest", factset.CallInvoke)
	sets["adapter"] = fs

	fs = factset.New("bridge")
	fs.AddType(&factset.TypeFact{Name: "Remote", References: []string{"Device"}, Members: []factset.Member{m("togglePower", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "AdvancedRemote", Supertypes: []string{"Remote"}, Members: []factset.Member{m("mute", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "Device", Abstract: true, Members: []factset.Member{m("powerOn", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "Tv", Supertypes: []string{"Device"}, Members: []factset.Member{m("powerOn", 0, factset.ReturnNone)}})
	fs.AddCall("Remote", "togglePower", "Device", "powerOn", factset.CallInvoke)
	sets["bridge"] = fs

	fs = factset.New("composite")
	fs.AddType(&factset.TypeFact{Name: "Graphic", Abstract: true, Members: []factset.Member{m("draw", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "Dot", Supertypes: []string{"Graphic"}, Members: []factset.Member{m("draw", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "CompoundGraphic", Supertypes: []string{"Graphic"}, References: []string{"Graphic"}, Members: []factset.Member{
		m("draw", 0, factset.ReturnNone),
		m("add", 1, factset.ReturnNone),
	}})
	fs.AddCall("CompoundGraphic", "draw", "Graphic", "draw", factset.CallInvoke)
	sets["composite"] = fs

	fs = factset.New("decorator")
	fs.AddType(&factset.TypeFact{Name: "DataSource", Abstract: true, Members: []factset.Member{m("writeData", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "FileDataSource", Supertypes: []string{"DataSource"}, Members: []factset.Member{m("writeData", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "DataSourceDecorator", Supertypes: []string{"DataSource"}, References: []string{"DataSource"}, Members: []factset.Member{m("writeData", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "EncryptionDecorator", Supertypes: []string{"DataSourceDecorator"}, Members: []factset.Member{m("writeData", 1, factset.ReturnNone)}})
	fs.AddCall("DataSourceDecorator", "writeData", "DataSource", "writeData", factset.CallInvoke)
	sets["decorator"] = fs

	fs = factset.New("facade")
	fs.AddType(&factset.TypeFact{Name: "VideoConverter", References: []string{"Codec", "BitrateReader"}, Members: []factset.Member{m("convert", 1, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "Codec", Members: []factset.Member{m("load", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "BitrateReader", Members: []factset.Member{m("read", 1, factset.ReturnValue)}})
	fs.AddCall("VideoConverter", "convert", "Codec", "load", factset.CallInvoke)
	fs.AddCall("VideoConverter", "convert", "BitrateReader", "read", factset.CallInvoke)
	sets["facade"] = fs

	fs = factset.New("flyweight")
	fs.AddType(&factset.TypeFact{Name: "TreeType", Abstract: true, Members: []factset.Member{m("draw", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "PineType", Supertypes: []string{"TreeType"}, Members: []factset.Member{m("draw", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "TreeFactory", References: []string{"TreeType"}, Members: []factset.Member{m("getTreeType", 1, factset.ReturnValue)}})
	fs.AddCall("TreeFactory", "getTreeType", "PineType", "", factset.CallConstruct)
	sets["flyweight"] = fs

	fs = factset.New("proxy")
	fs.AddType(&factset.TypeFact{Name: "ServiceInterface", Abstract: true, Members: []factset.Member{m("request", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "Service", Supertypes: []string{"ServiceInterface"}, Members: []factset.Member{m("request", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "ServiceProxy", Supertypes: []string{"ServiceInterface"}, References: []string{"Service"}, Members: []factset.Member{m("request", 0, factset.ReturnNone)}})
	fs.AddCall("ServiceProxy", "request", "Service", "request", factset.CallInvoke)
	sets["proxy"] = fs

	// behavioral

	fs = factset.New("chain-of-responsibility")
	fs.AddType(&factset.TypeFact{Name: "Handler", Abstract: true, References: []string{"Handler"}, Members: []factset.Member{m("handle", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "AuthHandler", Supertypes: []string{"Handler"}, Members: []factset.Member{m("handle", 1, factset.ReturnNone)}})
	fs.AddCall("AuthHandler", "handle", "Handler", "handle", factset.CallInvoke)
	sets["chain-of-responsibility"] = fs

	fs = factset.New("command")
	fs.AddType(&factset.TypeFact{Name: "Command", Abstract: true, Members: []factset.Member{m("execute", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "CopyCommand", Supertypes: []string{"Command"}, References: []string{"Editor"}, Members: []factset.Member{m("execute", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "Editor", Members: []factset.Member{m("copySelection", 0, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "Button", References: []string{"Command"}, Members: []factset.Member{m("click", 0, factset.ReturnNone)}})
	fs.AddCall("CopyCommand", "execute", "Editor", "copySelection", factset.CallInvoke)
	fs.AddCall("Button", "click", "Command", "execute", factset.CallInvoke)
	sets["command"] = fs

	fs = factset.New("interpreter")
	fs.AddType(&factset.TypeFact{Name: "Expression", Abstract: true, Members: []factset.Member{m("interpret", 1, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "NumberExpression", Supertypes: []string{"Expression"}, Members: []factset.Member{m("interpret", 1, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "AddExpression", Supertypes: []string{"Expression"}, References: []string{"Expression"}, Members: []factset.Member{m("interpret", 1, factset.ReturnValue)}})
	fs.AddCall("AddExpression", "interpret", "Expression", "interpret", factset.CallInvoke)
	sets["interpreter"] = fs

	fs = factset.New("iterator")
	fs.AddType(&factset.TypeFact{Name: "ProfileIterator", Abstract: true, Members: []factset.Member{
		m("hasMore", 0, factset.ReturnValue),
		m("getNext", 0, factset.ReturnValue),
	}})
	fs.AddType(&factset.TypeFact{Name: "FriendsIterator", References: []string{"SocialNetwork"}, Members: []factset.Member{
		m("hasMore", 0, factset.ReturnValue),
		m("getNext", 0, factset.ReturnValue),
	}})
	fs.AddType(&factset.TypeFact{Name: "ProfileCollection", Abstract: true, Members: []factset.Member{m("createIterator", 0, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "SocialNetwork", Supertypes: []string{"ProfileCollection"}, Members: []factset.Member{m("createIterator", 0, factset.ReturnValue)}})
	fs.AddCall("SocialNetwork", "createIterator", "FriendsIterator", "", factset.CallConstruct)
	sets["iterator"] = fs

	fs = factset.New("mediator")
	fs.AddType(&factset.TypeFact{Name: "Mediator", Abstract: true, Members: []factset.Member{m("notify", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "ChatRoom", Supertypes: []string{"Mediator"}, References: []string{"Participant"}, Members: []factset.Member{m("notify", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "Participant", Abstract: true, References: []string{"Mediator"}, Members: []factset.Member{m("receive", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "User", Supertypes: []string{"Participant"}, Members: []factset.Member{
		m("receive", 1, factset.ReturnNone),
		m("send", 1, factset.ReturnNone),
	}})
	fs.AddCall("ChatRoom", "notify", "Participant", "receive", factset.CallInvoke)
	fs.AddCall("User", "send", "Mediator", "notify", factset.CallInvoke)
	sets["mediator"] = fs

	fs = factset.New("memento")
	fs.AddType(&factset.TypeFact{Name: "TextEditor", Members: []factset.Member{
		m("save", 0, factset.ReturnValue),
		m("restore", 1, factset.ReturnNone),
	}})
	fs.AddType(&factset.TypeFact{Name: "EditorState", Members: []factset.Member{m("getText", 0, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "History", References: []string{"EditorState"}, Members: []factset.Member{m("push", 1, factset.ReturnNone)}})
	fs.AddCall("TextEditor", "save", "EditorState", "", factset.CallConstruct)
	fs.AddCall("TextEditor", "restore", "EditorState", "getText", factset.CallInvoke)
	sets["memento"] = fs

	fs = factset.New("observer")
	fs.AddType(&factset.TypeFact{Name: "EventSource", References: []string{"Listener"}, Members: []factset.Member{
		m("subscribe", 1, factset.ReturnNone),
		m("notifyListeners", 0, factset.ReturnNone),
	}})
	fs.AddType(&factset.TypeFact{Name: "FileWatcher", Supertypes: []string{"EventSource"}, Members: []factset.Member{m("scan", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "Listener", Abstract: true, Members: []factset.Member{m("update", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "LogListener", Supertypes: []string{"Listener"}, Members: []factset.Member{m("update", 1, factset.ReturnNone)}})
	fs.AddCall("EventSource", "notifyListeners", "Listener", "update", factset.CallInvoke)
	sets["observer"] = fs

	fs = factset.New("state")
	fs.AddType(&factset.TypeFact{Name: "Player", References: []string{"PlayerState"}, Members: []factset.Member{m("clickPlay", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "PlayerState", Abstract: true, Members: []factset.Member{m("handle", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "PlayingState", Supertypes: []string{"PlayerState"}, Members: []factset.Member{m("handle", 0, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "PausedState", Supertypes: []string{"PlayerState"}, Members: []factset.Member{m("handle", 0, factset.ReturnNone)}})
	fs.AddCall("Player", "clickPlay", "PlayerState", "handle", factset.CallInvoke)
	sets["state"] = fs

	fs = factset.New("strategy")
	fs.AddType(&factset.TypeFact{Name: "Sorter", References: []string{"SortStrategy"}, Members: []factset.Member{m("sort", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "SortStrategy", Abstract: true, Members: []factset.Member{m("execute", 1, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "QuickSort", Supertypes: []string{"SortStrategy"}, Members: []factset.Member{m("execute", 1, factset.ReturnValue)}})
	fs.AddType(&factset.TypeFact{Name: "MergeSort", Supertypes: []string{"SortStrategy"}, Members: []factset.Member{m("execute", 1, factset.ReturnValue)}})
	fs.AddCall("Sorter", "sort", "SortStrategy", "execute", factset.CallInvoke)
	sets["strategy"] = fs

	fs = factset.New("template-method")
	fs.AddType(&factset.TypeFact{Name: "DataMiner", Abstract: true, Members: []factset.Member{
		m("mine", 0, factset.ReturnNone),
		m("extract", 0, factset.ReturnValue),
		m("parse", 0, factset.ReturnValue),
	}})
	fs.AddType(&factset.TypeFact{Name: "CsvMiner", Supertypes: []string{"DataMiner"}, Members: []factset.Member{
		m("extract", 0, factset.ReturnValue),
		m("parse", 0, factset.ReturnValue),
	}})
	fs.AddCall("DataMiner", "mine", "DataMiner", "extract", factset.CallInvoke)
	fs.AddCall("DataMiner", "mine", "DataMiner", "parse", factset.CallInvoke)
	sets["template-method"] = fs

	fs = factset.New("visitor")
	fs.AddType(&factset.TypeFact{Name: "Visitor", Abstract: true, Members: []factset.Member{m("visitCircle", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "AreaVisitor", Supertypes: []string{"Visitor"}, Members: []factset.Member{m("visitCircle", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "Shape", Abstract: true, Members: []factset.Member{m("accept", 1, factset.ReturnNone)}})
	fs.AddType(&factset.TypeFact{Name: "Circle", Supertypes: []string{"Shape"}, Members: []factset.Member{m("accept", 1, factset.ReturnNone)}})
	fs.AddCall("Circle", "accept", "Visitor", "visitCircle", factset.CallInvoke)
	sets["visitor"] = fs

	return sets
}

func TestCanonicalExamples_AllPass(t *testing.T) {
	reg, err := pattern.Builtin()
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}

	sets := canonicalFacts()
	if len(sets) != reg.Len() {
		t.Fatalf("have %d canonical fact sets for %d templates", len(sets), reg.Len())
	}

	for _, name := range reg.Names() {
		name := name
		t.Run(name, func(t *testing.T) {
			fs, ok := sets[name]
			if !ok {
				t.Fatalf("no canonical fact set for %q", name)
			}
			v, err := Check(reg, name, fs, Options{})
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if !v.Pass {
				t.Errorf("Pass = false, violations: %+v", v.Violated)
			}
			if len(v.Violated) != 0 {
				t.Errorf("Violated = %+v, want empty", v.Violated)
			}
		})
	}
}

func TestCanonicalExamples_ValidFacts(t *testing.T) {
	for name, fs := range canonicalFacts() {
		if err := fs.Validate(); err != nil {
			t.Errorf("canonical %q facts invalid: %v", name, err)
		}
	}
}
