package blogservice

import (
	"github.com/openpress/blogapi/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 1, 150), "title", "must not be more than 150 characters long")
}

func validateBody(v *common.Validator, body string) {
	v.Check(body != "", "body", "must be provided")
}

func validateState(v *common.Validator, state string) {
	v.Check(common.In(BlogState(state), StateDraft, StatePublished), "state", `must be either "draft" or "published"`)
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
