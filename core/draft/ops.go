package draft

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// The operations below never modify their input: each one works on a clone
// and returns it. Out of range indices leave the draft untouched.

func AddModule(d Draft) Draft {
	out := d.Clone()
	out.Modules = append(out.Modules, NewModule(len(d.Modules)+1))
	return out
}

// RemoveModule refuses to remove the last module: a draft under edition
// always keeps at least one.
func RemoveModule(d Draft, m int) Draft {
	if !d.HasModule(m) || len(d.Modules) <= 1 {
		return d
	}
	out := d.Clone()
	out.Modules = append(out.Modules[:m], out.Modules[m+1:]...)
	return out
}

func AddLesson(d Draft, m int, t LessonType) Draft {
	if !d.HasModule(m) || !t.Valid() {
		return d
	}
	out := d.Clone()
	mod := &out.Modules[m]
	mod.Lessons = append(mod.Lessons, NewLesson(t, len(mod.Lessons)+1))
	return out
}

// RemoveLesson may leave a module without lessons.
func RemoveLesson(d Draft, m, l int) Draft {
	if !d.HasLesson(m, l) {
		return d
	}
	out := d.Clone()
	mod := &out.Modules[m]
	mod.Lessons = append(mod.Lessons[:l], mod.Lessons[l+1:]...)
	return out
}

func MoveLessonUp(d Draft, m, l int) Draft {
	return swapLessons(d, m, l, l-1)
}

func MoveLessonDown(d Draft, m, l int) Draft {
	return swapLessons(d, m, l, l+1)
}

func swapLessons(d Draft, m, i, j int) Draft {
	if !d.HasLesson(m, i) || !d.HasLesson(m, j) {
		return d
	}
	out := d.Clone()
	ls := out.Modules[m].Lessons
	ls[i], ls[j] = ls[j], ls[i]
	return out
}

// SortLessonsByVideoPresence puts lessons holding a video url first, then
// orders by title using Spanish collation. The sort is stable.
func SortLessonsByVideoPresence(d Draft, m int) Draft {
	if !d.HasModule(m) {
		return d
	}
	out := d.Clone()
	ls := out.Modules[m].Lessons
	col := collate.New(language.Spanish, collate.IgnoreCase)

	sort.SliceStable(ls, func(i, j int) bool {
		vi, vj := ls[i].HasVideo(), ls[j].HasVideo()
		if vi != vj {
			return vi
		}
		return col.CompareString(ls[i].Title, ls[j].Title) < 0
	})
	return out
}
