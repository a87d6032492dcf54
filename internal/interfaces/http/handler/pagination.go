package handler

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// pageOf applies the default paging to the values read from the query
func pageOf(page, pageSize int) (int, int) {
	if page <= 0 {
		page = defaultPage
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}
