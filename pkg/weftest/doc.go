// Package weftest provides helpers for testing components on the memory
// host.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := weftest.Mount(t, vdom.CreateElement(Counter, nil))
//	    h.ExpectContains("0")
//	    h.Click(h.ByID("inc"))
//	    h.ExpectContains("1")
//	}
//
// Every dispatch flushes the engine, so assertions always see the
// committed tree.
package weftest
