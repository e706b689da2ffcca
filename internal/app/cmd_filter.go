package app

import "reason/internal/filter"

// list shows the papers matching the current filter joined with the
// arguments. The history is not changed. Piped papers are filtered instead
// of the whole library.
func list(sh *Shell, in Input) (Output, error) {
	inst, err := filter.Resolve(in.Args[1:], false, sh.Config.Filter.CaseInsensitive)
	if err != nil {
		return nil, err
	}
	f := sh.State.Filters.Observe(inst)
	var within Selection
	if in.Piped {
		within = in.Selection
		if within == nil {
			within = Selection{}
		}
	}
	return sh.State.Select(f, within), nil
}

func changeDir(sh *Shell, in Input) (Output, error) {
	inst, err := filter.Resolve(in.Args[1:], true, sh.Config.Filter.CaseInsensitive)
	if err != nil {
		return nil, err
	}
	f := sh.State.Filters.Record(inst)
	cur, prev := sh.State.Filters.Cursor()
	logger.Printf("cd %T: level %d, previous %d, %d levels", inst, cur, prev, sh.State.Filters.Len())
	return sh.State.Select(f, nil), nil
}

func printDir(sh *Shell, in Input) (Output, error) {
	return Message(sh.State.Filters.Current().String()), nil
}
