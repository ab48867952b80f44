package runloop

// A DataSource is a pollable endpoint, for example a UART byte-ready flag.
//
// The owner keeps the DataSource alive for as long as it is registered. The
// run loop only links it into its registry. Process is called once per pass
// with the source itself and must return promptly; it may remove its own
// source, or any other, from the run loop.
type DataSource struct {
	ID      string
	Name    string
	Process func(ds *DataSource)

	next       *DataSource
	registered bool
}

// NewDataSource creates a DataSource with the given process callback.
func NewDataSource(name string, process func(ds *DataSource)) *DataSource {
	return &DataSource{
		Name:    name,
		Process: process,
	}
}

// Registered tells if the source is currently linked into a run loop.
func (ds *DataSource) Registered() bool {
	return ds.registered
}

// dataSourceList is the registry of data sources, kept in insertion order.
//
// cursor holds the node the running traversal visits next. Removing that node
// moves the cursor to its successor, so a traversal never follows an unlinked
// node and never visits a source removed before it was reached. A source
// appended during a traversal is visited in that traversal.
type dataSourceList struct {
	head    *DataSource
	tail    *DataSource
	cursor  *DataSource
	len     int
	walking bool
}

func (l *dataSourceList) reset() {
	for ds := l.head; ds != nil; {
		next := ds.next
		ds.next = nil
		ds.registered = false
		ds = next
	}

	*l = dataSourceList{}
}

// add appends ds. Adding a source that is already registered does nothing.
func (l *dataSourceList) add(ds *DataSource) bool {
	if ds.registered {
		return false
	}

	ds.next = nil
	ds.registered = true

	if l.tail == nil {
		l.head = ds
	} else {
		l.tail.next = ds
	}

	l.tail = ds
	l.len++

	if l.walking && l.cursor == nil {
		l.cursor = ds
	}

	return true
}

func (l *dataSourceList) remove(ds *DataSource) bool {
	var prev *DataSource

	for cur := l.head; cur != nil; cur = cur.next {
		if cur != ds {
			prev = cur
			continue
		}

		if prev == nil {
			l.head = cur.next
		} else {
			prev.next = cur.next
		}

		if l.tail == cur {
			l.tail = prev
		}

		if l.cursor == cur {
			l.cursor = cur.next
		}

		cur.next = nil
		cur.registered = false
		l.len--

		return true
	}

	return false
}

// forEach calls fn on every registered source in order. fn may add or remove
// sources.
func (l *dataSourceList) forEach(fn func(ds *DataSource)) {
	l.walking = true

	for ds := l.head; ds != nil; ds = l.cursor {
		l.cursor = ds.next
		fn(ds)
	}

	l.cursor = nil
	l.walking = false
}

func (l *dataSourceList) names() []string {
	names := make([]string, 0, l.len)
	for ds := l.head; ds != nil; ds = ds.next {
		names = append(names, ds.Name)
	}

	return names
}
