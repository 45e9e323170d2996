package fetch

import "fmt"

// prAxis names one of the three pull-request search queries.
type prAxis string

const (
	axisAuthor    prAxis = "author"
	axisReviewer  prAxis = "reviewed-by"
	axisCommenter prAxis = "commenter"
)

// prQuery builds the type:pr search query for one axis, scoped by an
// updated date range (inclusive, "since..until").
func prQuery(axis prAxis, user, since, until string) string {
	switch axis {
	case axisReviewer:
		return fmt.Sprintf("type:pr reviewed-by:%s updated:%s..%s", user, since, until)
	case axisCommenter:
		return fmt.Sprintf("type:pr commenter:%s updated:%s..%s", user, since, until)
	default:
		return fmt.Sprintf("type:pr author:%s updated:%s..%s", user, since, until)
	}
}

// commitQuery builds the commit search query, scoped by committer-date.
func commitQuery(user, since, until string) string {
	return fmt.Sprintf("author:%s committer-date:%s..%s", user, since, until)
}

// issueAxis names one of the two issue search queries.
type issueAxis string

const (
	issueAxisAuthor    issueAxis = "author"
	issueAxisCommenter issueAxis = "commenter"
)

func issueQuery(axis issueAxis, user, since, until string) string {
	if axis == issueAxisCommenter {
		return fmt.Sprintf("type:issue commenter:%s updated:%s..%s", user, since, until)
	}
	return fmt.Sprintf("type:issue author:%s updated:%s..%s", user, since, until)
}
