package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/core/course"
	"github.com/owais185-web/LuminaLMSPush/core/transaction"
)

var now = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	data, err := New(now)
	require.NoError(t, err)

	assert.Len(t, data.Users, 3)
	assert.Len(t, data.Courses, 3)
	assert.Len(t, data.Classes, 2)
	assert.Len(t, data.Messages, 4)
	assert.Len(t, data.Notifications, 2)
	assert.Len(t, data.Transactions, 3)
	assert.Len(t, data.Coupons, 3)
	assert.Len(t, data.Tickets, 2)
	assert.Len(t, data.Resources, 4)
	assert.Len(t, data.Announcements, 2)

	for _, usr := range data.Users {
		assert.NoError(t, usr.CheckPassword(DemoPassword), usr.Email)
		assert.NoError(t, core.CheckStruct(usr), usr.Email)
	}
	for _, c := range data.Courses {
		assert.NoError(t, core.CheckStruct(c), c.ID)
	}
	for _, tx := range data.Transactions {
		assert.NoError(t, core.CheckStruct(tx), tx.ID)
	}
	for _, tkt := range data.Tickets {
		assert.NoError(t, tkt.Validate(), tkt.ID)
	}
}

func TestCourses_DripRelativeToNow(t *testing.T) {
	c := Courses(now)[0]
	visible := c.VisibleModules(now)
	require.Len(t, visible, 2)
	assert.Equal(t, "m2", visible[1].ID)

	lesson, ok := c.FirstSelectableLesson(now)
	require.True(t, ok)
	assert.Equal(t, "l1", lesson.ID)
	assert.Equal(t, course.StatusDraft, Courses(now)[2].Status)
}

func TestClasses_FirstIsInsideCancellationWindow(t *testing.T) {
	classes := Classes(now)
	assert.Less(t, classes[0].StartTime.Sub(now), 4*time.Hour)
	assert.Greater(t, classes[1].StartTime.Sub(now), 4*time.Hour)
}

func TestTransactions_Statuses(t *testing.T) {
	counts := map[transaction.Status]int{}
	for _, tx := range Transactions(now) {
		counts[tx.Status]++
	}
	assert.Equal(t, 2, counts[transaction.StatusSucceeded])
	assert.Equal(t, 1, counts[transaction.StatusRefunded])
}
