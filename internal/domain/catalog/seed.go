package catalog

import (
	"time"

	"github.com/okian/shopfloor/internal/domain/model"
)

func seedEmployees() []model.Employee {
	return []model.Employee{
		{ID: "1", Name: "John Smith", Role: "Sales Associate", Email: "john.smith@retailtraining.com", Avatar: "/avatar-1.png"},
		{ID: "2", Name: "Sarah Johnson", Role: "Customer Support", Email: "sarah.johnson@retailtraining.com", Avatar: "/avatar-2.png"},
	}
}

func seedCategories() []model.ScenarioCategory {
	return []model.ScenarioCategory{
		{ID: "cs", Name: "Customer Support", Description: "Handle customer inquiries, complaints, and service requests", Icon: "headset"},
		{ID: "sales", Name: "Sales Techniques", Description: "Learn effective selling strategies and upselling methods", Icon: "tag"},
		{ID: "conflict", Name: "Conflict Resolution", Description: "Manage difficult situations and resolve customer conflicts", Icon: "shield"},
		{ID: "product", Name: "Product Knowledge", Description: "Deepen your understanding of products and services", Icon: "package"},
	}
}

func seedScenarios() []model.TrainingScenario {
	return []model.TrainingScenario{
		{
			ID:              "cs-1",
			Title:           "Handling Late Delivery Complaints",
			Description:     "Learn how to address customer complaints about delayed deliveries and provide appropriate solutions.",
			Category:        "cs",
			Difficulty:      model.DifficultyBeginner,
			DurationMinutes: 15,
			Status:          model.StatusNotStarted,
		},
		{
			ID:              "cs-2",
			Title:           "Processing Returns and Exchanges",
			Description:     "Practice handling product returns and exchanges while maintaining positive customer relations.",
			Category:        "cs",
			Difficulty:      model.DifficultyIntermediate,
			DurationMinutes: 20,
			Status:          model.StatusNotStarted,
		},
		{
			ID:              "sales-1",
			Title:           "Effective Upselling Techniques",
			Description:     "Learn strategies to suggest complementary products and increase average order value.",
			Category:        "sales",
			Difficulty:      model.DifficultyIntermediate,
			DurationMinutes: 25,
			Status:          model.StatusNotStarted,
		},
		{
			ID:              "conflict-1",
			Title:           "De-escalating Customer Frustration",
			Description:     "Practice techniques to calm upset customers and resolve their concerns effectively.",
			Category:        "conflict",
			Difficulty:      model.DifficultyAdvanced,
			DurationMinutes: 30,
			Status:          model.StatusNotStarted,
		},
		{
			ID:              "product-1",
			Title:           "Premium Product Features Overview",
			Description:     "Learn the key features and benefits of our premium product line to better assist customers.",
			Category:        "product",
			Difficulty:      model.DifficultyBeginner,
			DurationMinutes: 15,
			Status:          model.StatusNotStarted,
		},
	}
}

func seedSteps() []model.ScenarioStep {
	return []model.ScenarioStep{
		{
			ID: "cs-1-step1", ScenarioID: "cs-1", Order: 1,
			CustomerPrompt: "I ordered a package three days ago with express shipping, and it still hasn't arrived. I paid extra for fast delivery, and I'm really frustrated!",
			ExpectedResponse: []string{
				"Acknowledge the customer's frustration",
				"Apologize for the delay",
				"Offer to track the package immediately",
			},
			Tips: []string{
				"Make sure to validate the customer's feelings",
				"Don't make promises you can't keep about delivery times",
			},
		},
		{
			ID: "cs-1-step2", ScenarioID: "cs-1", Order: 2,
			CustomerPrompt: "I checked the tracking and it says 'in transit', but that's not helpful. I need it for a birthday tomorrow!",
			ExpectedResponse: []string{
				"Empathize with the urgency",
				"Provide specific information about current location if possible",
				"Offer solutions or alternatives",
			},
			Tips: []string{
				"Focus on what you can do, not what you can't",
				"If appropriate, offer compensation such as a discount code or free shipping on next order",
			},
		},
		{
			ID: "cs-1-step3", ScenarioID: "cs-1", Order: 3,
			CustomerPrompt: "I appreciate your help, but I still need a solution for the birthday gift. What options do I have at this point?",
			ExpectedResponse: []string{
				"Offer expedited shipping for a replacement",
				"Suggest digital gift card as immediate alternative",
				"Propose a discount or coupon for the inconvenience",
			},
			Tips: []string{
				"Present multiple options to give the customer choice",
				"Make sure any solution you offer is actually feasible",
			},
		},
		{
			ID: "cs-2-step1", ScenarioID: "cs-2", Order: 1,
			CustomerPrompt: "I bought this jacket last week and the zipper already broke. I want to return it.",
			ExpectedResponse: []string{"Apologize for the defect", "Confirm the purchase details", "Explain the return options"},
			Tips:             []string{"Ask for the receipt politely", "Offer an exchange as well as a refund"},
		},
		{
			ID: "cs-2-step2", ScenarioID: "cs-2", Order: 2,
			CustomerPrompt: "I don't have the receipt anymore. Is that going to be a problem?",
			ExpectedResponse: []string{"Reassure the customer", "Offer to look the order up by card or email"},
			Tips:             []string{"Avoid leading with what is not possible"},
		},
		{
			ID: "cs-2-step3", ScenarioID: "cs-2", Order: 3,
			CustomerPrompt: "You don't have my size in stock for an exchange. Now what?",
			ExpectedResponse: []string{"Offer to order the size in", "Offer a refund or store credit"},
			Tips:             []string{"Give the customer a choice between options"},
		},
		{
			ID: "cs-2-step4", ScenarioID: "cs-2", Order: 4,
			CustomerPrompt: "Fine, but how long will it take for the new one to arrive?",
			ExpectedResponse: []string{"Give a realistic timeframe", "Offer to notify the customer on arrival"},
			Tips:             []string{"Under-promise and over-deliver on timelines"},
		},
		{
			ID: "sales-1-step1", ScenarioID: "sales-1", Order: 1,
			CustomerPrompt: "I'm just here for a phone case. Which one is the cheapest?",
			ExpectedResponse: []string{"Answer the question directly", "Ask what matters to the customer in a case"},
			Tips:             []string{"Listen before recommending"},
		},
		{
			ID: "sales-1-step2", ScenarioID: "sales-1", Order: 2,
			CustomerPrompt: "A screen protector too? I don't really want to spend more money today.",
			ExpectedResponse: []string{"Respect the budget", "Explain the value briefly without pressure"},
			Tips:             []string{"Never push after a clear no"},
		},
		{
			ID: "conflict-1-step1", ScenarioID: "conflict-1", Order: 1,
			CustomerPrompt: "This is the third time I've come back about this! Nobody here ever fixes anything!",
			ExpectedResponse: []string{"Stay calm", "Acknowledge the repeated inconvenience", "Take ownership"},
			Tips:             []string{"Lower your voice and slow down", "Avoid blaming colleagues"},
		},
		{
			ID: "conflict-1-step2", ScenarioID: "conflict-1", Order: 2,
			CustomerPrompt: "I want to speak to your manager right now.",
			ExpectedResponse: []string{"Offer to help first", "Explain what you can do immediately"},
			Tips:             []string{"Escalate only when you cannot resolve the issue yourself"},
		},
		{
			ID: "conflict-1-step3", ScenarioID: "conflict-1", Order: 3,
			CustomerPrompt: "Okay. If you can actually sort it out today, I'll give you one more chance.",
			ExpectedResponse: []string{"Commit to a concrete action", "Confirm the next steps and timeline"},
			Tips:             []string{"Summarize what will happen before the customer leaves"},
		},
		{
			ID: "product-1-step1", ScenarioID: "product-1", Order: 1,
			CustomerPrompt: "What's actually the difference between the standard and the premium blender?",
			ExpectedResponse: []string{"Compare the key features", "Relate features to the customer's needs"},
			Tips:             []string{"Ask how the customer plans to use it"},
		},
		{
			ID: "product-1-step2", ScenarioID: "product-1", Order: 2,
			CustomerPrompt: "Is the premium warranty worth it, or is that just a sales pitch?",
			ExpectedResponse: []string{"Explain the warranty honestly", "Let the customer decide"},
			Tips:             []string{"Credibility matters more than the sale"},
		},
	}
}

func seedProgress() []model.ProgressRecord {
	completedAt := time.Date(2023, time.April, 15, 10, 45, 0, 0, time.UTC)
	avg := 85.0
	best := 92
	return []model.ProgressRecord{
		{
			EmployeeID:     "1",
			ScenarioID:     "cs-1",
			CompletedSteps: 3,
			TotalSteps:     3,
			StartTime:      time.Date(2023, time.April, 15, 10, 30, 0, 0, time.UTC),
			CompletionTime: &completedAt,
			AverageScore:   &avg,
			BestScore:      &best,
		},
		{
			EmployeeID:     "1",
			ScenarioID:     "cs-2",
			CompletedSteps: 1,
			TotalSteps:     4,
			StartTime:      time.Date(2023, time.April, 16, 14, 15, 0, 0, time.UTC),
		},
	}
}
