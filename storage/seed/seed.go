// Package seed holds the first-run dataset of every collection.
package seed

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/owais185-web/LuminaLMSPush/core/announcement"
	"github.com/owais185-web/LuminaLMSPush/core/coupon"
	"github.com/owais185-web/LuminaLMSPush/core/course"
	"github.com/owais185-web/LuminaLMSPush/core/liveclass"
	"github.com/owais185-web/LuminaLMSPush/core/message"
	"github.com/owais185-web/LuminaLMSPush/core/notification"
	"github.com/owais185-web/LuminaLMSPush/core/resource"
	"github.com/owais185-web/LuminaLMSPush/core/ticket"
	"github.com/owais185-web/LuminaLMSPush/core/transaction"
	"github.com/owais185-web/LuminaLMSPush/core/user"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

const day = 24 * time.Hour

type Data struct {
	Users         []user.User
	Courses       []course.Course
	Classes       []liveclass.LiveClass
	Messages      []message.Message
	Notifications []notification.Notification
	Transactions  []transaction.Transaction
	Coupons       []coupon.Coupon
	Tickets       []ticket.Ticket
	Resources     []resource.Resource
	Announcements []announcement.Announcement
}

// New builds the demo dataset, with relative dates computed from now.
func New(now time.Time) (Data, error) {
	users, err := Users()
	if err != nil {
		return Data{}, err
	}
	return Data{
		Users:         users,
		Courses:       Courses(now),
		Classes:       Classes(now),
		Messages:      Messages(now),
		Notifications: Notifications(now),
		Transactions:  Transactions(now),
		Coupons:       Coupons(),
		Tickets:       Tickets(now),
		Resources:     Resources(now),
		Announcements: Announcements(now),
	}, nil
}

func Users() ([]user.User, error) {
	users := []user.User{
		{ID: "u1", Name: "Admin Alice", Role: user.RoleAdmin, Avatar: "https://picsum.photos/seed/admin/200", Email: "admin@lumina.com", EnrolledCourses: []string{}, Billing: user.DefaultBilling()},
		{ID: "u2", Name: "Prof. Snape", Role: user.RoleTeacher, Avatar: "https://picsum.photos/seed/teacher/200", Email: "snape@lumina.com", EnrolledCourses: []string{}, Billing: user.DefaultBilling()},
		{
			ID:              "u3",
			Name:            "Harry P.",
			Role:            user.RoleStudent,
			Avatar:          "https://picsum.photos/seed/student/200",
			Email:           "harry@hogwarts.edu",
			EnrolledCourses: []string{"c1"},
			Billing: user.Billing{
				AutoPaymentEnabled: true,
				SavedCardLast4:     "4242",
				SubscriptionEnd:    null.TimeFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
				Status:             user.BillingActive,
			},
		},
	}
	for i := range users {
		if err := users[i].SetPassword(DemoPassword); err != nil {
			return nil, errors.Wrap(err, "hashing demo password")
		}
	}
	return users, nil
}

func content(now time.Time) []course.Module {
	return []course.Module{
		{
			ID:         "m1",
			Title:      "Module 1: Fundamentals",
			UnlockDate: null.TimeFrom(now.Add(-30 * day)),
			Lessons: []course.Lesson{
				{ID: "l1", Title: "Introduction to the Course", Duration: "05:20", Type: course.LessonVideo, IsCompleted: true, VideoURL: "https://example.com/video1"},
				{ID: "l2", Title: "Setting Up Your Environment", Duration: "12:45", Type: course.LessonVideo, IsCompleted: true, VideoURL: "https://example.com/video2"},
				{ID: "l3", Title: "Core Concepts Quiz", Duration: "10 mins", Type: course.LessonQuiz},
			},
		},
		{
			ID:         "m2",
			Title:      "Module 2: Advanced Patterns",
			UnlockDate: null.TimeFrom(now.Add(-day)),
			Lessons: []course.Lesson{
				{ID: "l4", Title: "Higher Order Components", Duration: "15:30", Type: course.LessonVideo},
				{ID: "l5", Title: "Custom Hooks Deep Dive", Duration: "18:15", Type: course.LessonVideo, IsLocked: true},
			},
		},
		{
			ID:         "m3",
			Title:      "Module 3: The Future",
			UnlockDate: null.TimeFrom(now.Add(7 * day)),
			Lessons: []course.Lesson{
				{ID: "l6", Title: "NextJS Integration", Duration: "20:00", Type: course.LessonVideo, IsLocked: true},
			},
		},
	}
}

func Courses(now time.Time) []course.Course {
	return []course.Course{
		{
			ID:          "c1",
			Title:       "Advanced Potions & React Hooks",
			Instructor:  "Prof. Snape",
			Students:    1240,
			Revenue:     decimal.NewFromInt(124000),
			Status:      course.StatusPublished,
			Thumbnail:   "https://picsum.photos/seed/course1/400/200",
			Modules:     12,
			Price:       decimal.NewFromInt(150),
			Content:     content(now),
			Description: "Master the delicate art of state management and potion brewing. This comprehensive course covers everything from basic useState cauldrons to advanced Redux elixirs.",
			NextRelease: "2023-12-01",
			SecurityConfig: &course.SecurityConfig{
				DRMEnabled:     true,
				AllowedDomains: []string{"lumina.edu"},
				WatermarkText:  "Lumina Student",
			},
			Reviews: []course.Review{
				{ID: "r1", UserID: "u99", UserName: "Hermione G.", Rating: 5, Comment: "Absolutely brilliant! The hooks section was magical.", Date: now.Add(-10 * day)},
				{ID: "r2", UserID: "u98", UserName: "Ron W.", Rating: 4, Comment: "A bit tough, but very rewarding.", Date: now.Add(-5 * day)},
			},
		},
		{
			ID:          "c2",
			Title:       "Defense Against the Dark UX",
			Instructor:  "Prof. Lupin",
			Students:    850,
			Revenue:     decimal.NewFromInt(85000),
			Status:      course.StatusPublished,
			Thumbnail:   "https://picsum.photos/seed/course2/400/200",
			Modules:     8,
			Price:       decimal.NewFromInt(120),
			Content:     content(now),
			Description: "Learn to identify and banish dark patterns from your user interfaces. Protect your users from cognitive overload and deceptive design.",
			Reviews:     []course.Review{},
		},
		{
			ID:         "c3",
			Title:      "History of Magic & CSS",
			Instructor: "Prof. Binns",
			Students:   300,
			Revenue:    decimal.NewFromInt(15000),
			Status:     course.StatusDraft,
			Thumbnail:  "https://picsum.photos/seed/course3/400/200",
			Price:      decimal.NewFromInt(90),
			Content:    []course.Module{},
			Reviews:    []course.Review{},
		},
	}
}

func Classes(now time.Time) []liveclass.LiveClass {
	return []liveclass.LiveClass{
		{
			ID:              "lc1",
			Title:           "Live Code Review: Optimization",
			StartTime:       now.Add(45 * time.Minute),
			DurationMinutes: 60,
			InstructorID:    "u2",
			CourseID:        null.StringFrom("c1"),
			MeetingLink:     "https://zoom.us/j/mock-meeting-link",
			Attendees:       []string{},
			Status:          liveclass.StatusScheduled,
		},
		{
			ID:              "lc2",
			Title:           "Q&A Session: State Management",
			StartTime:       now.Add(day),
			DurationMinutes: 90,
			InstructorID:    "u2",
			CourseID:        null.StringFrom("c1"),
			Attendees:       []string{"u3"},
			Status:          liveclass.StatusScheduled,
		},
	}
}

func Messages(now time.Time) []message.Message {
	return []message.Message{
		{ID: "m1", SenderID: "u3", SenderName: "Harry P.", Content: "Is the advanced hooks module available yet?", Timestamp: now.Add(-time.Hour), ChannelID: "general"},
		{ID: "m2", SenderID: "u2", SenderName: "Prof. Snape", Content: "It releases tomorrow at 9 AM sharp. Do not be late.", Timestamp: now.Add(-30 * time.Minute), ChannelID: "general"},
		{
			ID:         "m3",
			SenderID:   "u2",
			SenderName: "Prof. Snape",
			Content:    "Here is the syllabus for the test.",
			Timestamp:  now.Add(-15 * time.Minute),
			ChannelID:  "general",
			Attachment: &message.Attachment{Type: message.AttachmentFile, Name: "syllabus_v2.pdf", URL: "#"},
		},
		{ID: "m4", SenderID: "u3", SenderName: "Harry P.", Content: "Anyone else struggling with the reducer in Module 2?", Timestamp: now.Add(-5 * time.Minute), ChannelID: "c1"},
	}
}

func Announcements(now time.Time) []announcement.Announcement {
	return []announcement.Announcement{
		{ID: "a1", Title: "Platform Maintenance Scheduled", Content: "Lumina will undergo scheduled maintenance this Sunday from 2 AM to 4 AM EST.", Audience: announcement.AudienceAll, Date: now.Add(-2 * day), Author: "System Admin"},
		{ID: "a2", Title: "New Grading Policy", Content: "Please review the updated grading rubrics in the Teacher Handbook.", Audience: announcement.AudienceTeachers, Date: now.Add(-5 * day), Author: "Dean of Studies"},
	}
}

func Notifications(now time.Time) []notification.Notification {
	return []notification.Notification{
		{
			ID:        "n1",
			UserID:    "u1",
			Type:      notification.TypeAlert,
			Message:   `Class "Intro to Potions" was cancelled by Prof. Snape.`,
			Timestamp: now.Add(-120 * time.Minute),
			Metadata:  notification.NewMetadata(notification.EventCancel, notification.KeyClassID, "lc99"),
		},
		{
			ID:        "n2",
			UserID:    "u1",
			Type:      notification.TypeInfo,
			Message:   `Harry P. requested a reschedule for "Defense Arts".`,
			Timestamp: now.Add(-200 * time.Minute),
			IsRead:    true,
			Metadata:  notification.NewMetadata(notification.EventReschedule, notification.KeyClassID, "lc98"),
		},
	}
}

func Transactions(now time.Time) []transaction.Transaction {
	return []transaction.Transaction{
		{ID: "tx_1", UserID: "u3", UserName: "Harry P.", Description: "Course Enrollment: Advanced Potions", Amount: decimal.NewFromInt(150), Status: transaction.StatusSucceeded, Date: now.Add(-5 * day), InvoiceID: "INV-0001", PaymentMethod: "Visa 4242"},
		{ID: "tx_2", UserID: "u3", UserName: "Harry P.", Description: "Monthly Subscription: All-Access", Amount: decimal.NewFromInt(29), Status: transaction.StatusSucceeded, Date: now.Add(-30 * day), InvoiceID: "INV-0000", PaymentMethod: "Visa 4242"},
		{ID: "tx_3", UserID: "u3", UserName: "Harry P.", Description: "E-Book: Defensive Spells", Amount: decimal.NewFromInt(15), Status: transaction.StatusRefunded, Date: now.Add(-2 * day), InvoiceID: "INV-0002", PaymentMethod: "Visa 4242"},
	}
}

func Coupons() []coupon.Coupon {
	return []coupon.Coupon{
		{Code: "WELCOME20", DiscountPercent: 20},
		{Code: "POTIONS10", DiscountPercent: 10},
		{Code: "MAGIC50", DiscountPercent: 50},
	}
}

func Tickets(now time.Time) []ticket.Ticket {
	return []ticket.Ticket{
		{
			ID:          "t1",
			UserID:      "u3",
			UserName:    "Harry P.",
			Subject:     "Video playback issue on Module 2",
			Category:    ticket.CategoryTechnical,
			Description: `I keep getting a black screen when I try to load the "Advanced Patterns" video.`,
			Status:      ticket.StatusOpen,
			Priority:    ticket.PriorityHigh,
			CreatedAt:   now.Add(-2 * time.Hour),
			UpdatedAt:   now.Add(-2 * time.Hour),
		},
		{
			ID:                   "t2",
			UserID:               "u3",
			UserName:             "Harry P.",
			Subject:              "Accidental Purchase - Refund Request",
			Category:             ticket.CategoryRefund,
			Description:          "I accidentally bought the E-Book twice. Please refund.",
			Status:               ticket.StatusResolved,
			Priority:             ticket.PriorityMedium,
			CreatedAt:            now.Add(-3 * day),
			UpdatedAt:            now.Add(-day),
			RelatedTransactionID: null.StringFrom("tx_3"),
			AdminResponse:        null.StringFrom("Refund processed successfully."),
		},
	}
}

func Resources(now time.Time) []resource.Resource {
	return []resource.Resource{
		{ID: "r1", Title: "React Hooks Cheatsheet.pdf", Type: resource.TypePDF, URL: "#", CourseID: null.StringFrom("c1"), Description: "A quick reference guide for all React Hooks, including custom hook patterns.", DateAdded: now.Add(-10 * day)},
		{ID: "r2", Title: "Potion Ingredients List.docx", Type: resource.TypeDoc, URL: "#", CourseID: null.StringFrom("c1"), Description: "Complete list of required ingredients for the semester.", DateAdded: now.Add(-12 * day), IsLocked: true},
		{ID: "r3", Title: "Mental Models for Learning", Type: resource.TypeLink, URL: "#", Description: "External article on effective learning strategies.", DateAdded: now.Add(-2 * day)},
		{ID: "r4", Title: "Course Syllabus 2024", Type: resource.TypePDF, URL: "#", Description: "General syllabus for all first year students.", DateAdded: now.Add(-30 * day)},
	}
}
