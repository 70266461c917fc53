package fsops

import "os"

// FakeDeleter implements Deleter for testing
// Records all delete calls without performing actual deletions.
// FailOn injects an error for a given path; Missing makes a path
// report os.ErrNotExist, simulating an already-removed file.
type FakeDeleter struct {
	Calls   []string
	FailOn  map[string]error
	Missing map[string]bool
}

func (f *FakeDeleter) Remove(path string) error {
	f.Calls = append(f.Calls, "rm:"+path)
	return f.result(path)
}

func (f *FakeDeleter) RemoveAll(path string) error {
	f.Calls = append(f.Calls, "rmall:"+path)
	return f.result(path)
}

func (f *FakeDeleter) result(path string) error {
	if f.Missing[path] {
		return os.ErrNotExist
	}
	if err, ok := f.FailOn[path]; ok {
		return err
	}
	return nil
}
