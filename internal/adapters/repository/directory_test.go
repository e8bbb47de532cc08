package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/taskflow/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func testUsers() []model.Candidate {
	return []model.Candidate{
		{
			ID: "user_001", Username: "stacey", DisplayName: "Stacey", TimeZone: "America/New_York",
			Skills:   []model.Skill{{Name: "React", Level: 4}, {Name: "JavaScript", Level: 5}},
			Capacity: model.Capacity{PointsPerSprint: 40, CurrentLoad: 24},
		},
		{
			ID: "user_002", Username: "maya", DisplayName: "Maya", TimeZone: "Europe/London",
			Skills:   []model.Skill{{Name: "Python", Level: 5}},
			Capacity: model.Capacity{PointsPerSprint: 45, CurrentLoad: 36},
		},
	}
}

func testTasks() []model.Task {
	return []model.Task{
		{
			Key: "TASK-101", Project: "TF", Status: model.StatusToDo, StoryPoints: 8,
			RequiredSkills: []model.SkillRequirement{{Name: "React", MinLevel: 3}},
		},
		{
			Key: "TASK-102", Project: "TF", Status: model.StatusToDo, StoryPoints: 13,
			RequiredSkills: []model.SkillRequirement{{Name: "Python", MinLevel: 4}},
		},
		{
			Key: "OPS-7", Project: "OPS", Status: model.StatusInProgress, Assignee: "maya", StoryPoints: 5,
			RequiredSkills: []model.SkillRequirement{},
		},
	}
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
}

func TestNewDirectory(t *testing.T) {
	Convey("Given fixture users and tasks", t, func() {
		users, tasks := testUsers(), testTasks()

		Convey("When building a directory", func() {
			d, err := NewDirectory(users, tasks)

			Convey("Then every record is indexed", func() {
				So(err, ShouldBeNil)
				nu, nt := d.Count(context.Background())
				So(nu, ShouldEqual, 2)
				So(nt, ShouldEqual, 3)
			})

			Convey("Then the caller's slices are not shared", func() {
				users[0].Skills[0].Level = 1
				u, err := d.User(context.Background(), "stacey")
				So(err, ShouldBeNil)
				So(u.Skills[0].Level, ShouldEqual, 4)
			})
		})

		Convey("When two users share an id", func() {
			users[1].ID = users[0].ID
			_, err := NewDirectory(users, tasks)
			So(errors.Is(err, ErrDuplicate), ShouldBeTrue)
		})

		Convey("When two users share a username", func() {
			users[1].Username = users[0].Username
			_, err := NewDirectory(users, tasks)
			So(errors.Is(err, ErrDuplicate), ShouldBeTrue)
		})

		Convey("When two tasks share a key", func() {
			tasks[1].Key = tasks[0].Key
			_, err := NewDirectory(users, tasks)
			So(errors.Is(err, ErrDuplicate), ShouldBeTrue)
		})

		Convey("When a user has no username", func() {
			users[0].Username = ""
			_, err := NewDirectory(users, tasks)
			So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When a task is malformed", func() {
			tasks[0].RequiredSkills[0].MinLevel = 0
			_, err := NewDirectory(users, tasks)
			So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
		})
	})
}

func TestDirectoryQueries(t *testing.T) {
	Convey("Given a directory", t, func() {
		ctx := context.Background()
		d, err := NewDirectory(testUsers(), testTasks())
		So(err, ShouldBeNil)

		Convey("When listing users", func() {
			users := d.Users(ctx)

			Convey("Then fixture order is kept", func() {
				So(len(users), ShouldEqual, 2)
				So(users[0].Username, ShouldEqual, "stacey")
				So(users[1].Username, ShouldEqual, "maya")
			})

			Convey("Then the result is a copy", func() {
				users[0].Capacity.CurrentLoad = 999
				u, _ := d.User(ctx, "stacey")
				So(u.Capacity.CurrentLoad, ShouldEqual, 24.0)
			})
		})

		Convey("When looking up unknown records", func() {
			_, errUser := d.User(ctx, "nobody")
			_, errID := d.Candidate(ctx, "user_999")
			_, errTask := d.Task(ctx, "TASK-999")

			Convey("Then not found errors are returned", func() {
				So(errors.Is(errUser, ErrUserNotFound), ShouldBeTrue)
				So(errors.Is(errID, ErrUserNotFound), ShouldBeTrue)
				So(errors.Is(errTask, ErrTaskNotFound), ShouldBeTrue)
			})
		})

		Convey("When looking up a candidate by id", func() {
			c, err := d.Candidate(ctx, "user_002")
			So(err, ShouldBeNil)
			So(c.Username, ShouldEqual, "maya")
		})

		Convey("When filtering tasks", func() {
			So(len(d.Tasks(ctx, TaskFilter{})), ShouldEqual, 3)
			So(len(d.Tasks(ctx, TaskFilter{Project: "TF"})), ShouldEqual, 2)
			So(len(d.Tasks(ctx, TaskFilter{Assignee: "maya"})), ShouldEqual, 1)
			So(len(d.Tasks(ctx, TaskFilter{Project: "TF", Status: model.StatusInProgress})), ShouldEqual, 0)
		})

		Convey("When listing unassigned tasks", func() {
			tasks := d.UnassignedTasks(ctx)
			So(len(tasks), ShouldEqual, 2)
			So(tasks[0].Key, ShouldEqual, "TASK-101")
			So(tasks[1].Key, ShouldEqual, "TASK-102")
		})
	})
}

func TestDirectoryAssign(t *testing.T) {
	Convey("Given a directory with a fixed clock and id source", t, func() {
		ctx := context.Background()
		d, err := NewDirectory(testUsers(), testTasks(),
			WithClock(fixedClock),
			WithIDGenerator(func() string { return "asg-1" }),
		)
		So(err, ShouldBeNil)

		Convey("When assigning an open task", func() {
			a, err := d.Assign(ctx, "TASK-101", "stacey")

			Convey("Then an assignment record is returned", func() {
				So(err, ShouldBeNil)
				So(a.ID, ShouldEqual, "asg-1")
				So(a.Assignee, ShouldEqual, "stacey")
				So(a.AssigneeDisplayName, ShouldEqual, "Stacey")
				So(a.StoryPoints, ShouldEqual, 8.0)
				So(a.AssignedAt.Equal(fixedClock()), ShouldBeTrue)
				So(a.Task.Status, ShouldEqual, model.StatusInProgress)
			})

			Convey("Then the task moves to In Progress", func() {
				task, _ := d.Task(ctx, "TASK-101")
				So(task.Assignee, ShouldEqual, "stacey")
				So(task.Status, ShouldEqual, model.StatusInProgress)
				So(len(d.UnassignedTasks(ctx)), ShouldEqual, 1)
			})

			Convey("Then the user's load grows by the story points", func() {
				u, _ := d.User(ctx, "stacey")
				So(u.Capacity.CurrentLoad, ShouldEqual, 32.0)
			})

			Convey("And assigning it again", func() {
				_, err := d.Assign(ctx, "TASK-101", "maya")

				Convey("Then it is rejected", func() {
					So(errors.Is(err, ErrAlreadyAssigned), ShouldBeTrue)
					u, _ := d.User(ctx, "maya")
					So(u.Capacity.CurrentLoad, ShouldEqual, 36.0)
				})
			})
		})

		Convey("When assigning an unknown task or user", func() {
			_, errTask := d.Assign(ctx, "TASK-999", "stacey")
			_, errUser := d.Assign(ctx, "TASK-101", "nobody")

			Convey("Then nothing changes", func() {
				So(errors.Is(errTask, ErrTaskNotFound), ShouldBeTrue)
				So(errors.Is(errUser, ErrUserNotFound), ShouldBeTrue)
				So(len(d.UnassignedTasks(ctx)), ShouldEqual, 2)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := d.Assign(cctx, "TASK-101", "stacey")
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestDirectoryWorkload(t *testing.T) {
	Convey("Given a directory", t, func() {
		ctx := context.Background()
		d, err := NewDirectory(testUsers(), testTasks())
		So(err, ShouldBeNil)

		Convey("When reading a user's workload", func() {
			w, err := d.Workload(ctx, "maya")

			Convey("Then assigned work and capacity are summarized", func() {
				So(err, ShouldBeNil)
				So(w.AssignedTasks, ShouldEqual, 1)
				So(w.AssignedPoints, ShouldEqual, 5.0)
				So(w.PointsPerSprint, ShouldEqual, 45.0)
				So(w.CurrentLoad, ShouldEqual, 36.0)
				So(w.UtilizationPercent, ShouldEqual, 80.0)
				So(w.AvailablePoints, ShouldEqual, 9.0)
				So(w.Band, ShouldEqual, model.BandOverloaded)
			})
		})

		Convey("When reading an unknown user's workload", func() {
			_, err := d.Workload(ctx, "nobody")
			So(errors.Is(err, ErrUserNotFound), ShouldBeTrue)
		})

		Convey("When reading the capacity overview", func() {
			o := d.CapacityOverview(ctx)

			Convey("Then members and totals are reported", func() {
				So(len(o.Members), ShouldEqual, 2)
				So(o.Members[0].Username, ShouldEqual, "stacey")
				So(o.Members[0].TimeZone, ShouldEqual, "America/New_York")
				So(o.Members[0].Workload.UtilizationPercent, ShouldEqual, 60.0)
				So(o.Members[0].Workload.Band, ShouldEqual, model.BandBusy)
				So(o.Totals.TotalCapacity, ShouldEqual, 85.0)
				So(o.Totals.TotalLoad, ShouldEqual, 60.0)
				So(o.Totals.TotalAssigned, ShouldEqual, 5.0)
				So(o.Totals.AverageUtilization, ShouldEqual, 70.0)
			})
		})

		Convey("When the directory is empty", func() {
			empty, err := NewDirectory(nil, nil)
			So(err, ShouldBeNil)
			o := empty.CapacityOverview(ctx)
			So(o.Members, ShouldNotBeNil)
			So(len(o.Members), ShouldEqual, 0)
			So(o.Totals.AverageUtilization, ShouldEqual, 0.0)
		})
	})
}

func TestDirectoryConcurrentAssign(t *testing.T) {
	Convey("Given many goroutines racing for one task", t, func() {
		ctx := context.Background()
		d, err := NewDirectory(testUsers(), testTasks())
		So(err, ShouldBeNil)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			success int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				user := "stacey"
				if n%2 == 0 {
					user = "maya"
				}
				if _, err := d.Assign(ctx, "TASK-102", user); err == nil {
					mu.Lock()
					success++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		Convey("Then exactly one assignment wins", func() {
			So(success, ShouldEqual, 1)
			task, _ := d.Task(ctx, "TASK-102")
			w, _ := d.Workload(ctx, task.Assignee)
			So(w.AssignedPoints, ShouldBeGreaterThanOrEqualTo, 13.0)
			So(task.Status, ShouldEqual, model.StatusInProgress)
		})
	})
}
