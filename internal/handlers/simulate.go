package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signalhound-dev/signalhound/db"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
	"github.com/signalhound-dev/signalhound/internal/utils"
)

type SimulateSignalsRequest struct {
	Count int `json:"count"`
}

type mockCompany struct {
	Name   string
	Domain string
}

var mockCompanies = []mockCompany{
	{"Northwind Robotics", "northwindrobotics.com"},
	{"Lumen Analytics", "lumenanalytics.io"},
	{"Harbor Freight Labs", "harborfreightlabs.com"},
	{"Cedarline Health", "cedarlinehealth.com"},
	{"Quartzify", "quartzify.dev"},
	{"Bluefin Logistics", "bluefinlogistics.com"},
	{"Atlas Grid", "atlasgrid.energy"},
	{"Maple & Main", "mapleandmain.co"},
}

var mockTemplates = map[string]struct {
	Titles     []string
	Priorities []string
	Metadata   func(mockCompany) map[string]any
}{
	types.SignalHiring: {
		Titles:     []string{"%s is hiring a VP of Sales", "%s posted 12 new engineering roles", "%s opened a sales development team"},
		Priorities: []string{types.PriorityHigh, types.PriorityMedium, types.PriorityMedium},
		Metadata: func(c mockCompany) map[string]any {
			return map[string]any{"job_titles": []string{"VP of Sales", "Account Executive"}, "job_count": 12}
		},
	},
	types.SignalFunding: {
		Titles:     []string{"%s raised a Series B", "%s closed a $25M round", "%s announced seed funding"},
		Priorities: []string{types.PriorityHigh, types.PriorityHigh, types.PriorityMedium},
		Metadata: func(c mockCompany) map[string]any {
			return map[string]any{"funding_amount": "$25M", "round": "Series B"}
		},
	},
	types.SignalExpansion: {
		Titles:     []string{"%s is opening a new office in Austin", "%s expands into the EU market"},
		Priorities: []string{types.PriorityMedium, types.PriorityMedium},
		Metadata: func(c mockCompany) map[string]any {
			return map[string]any{"location": "Austin, TX"}
		},
	},
	types.SignalPartnership: {
		Titles:     []string{"%s announced a strategic partnership", "%s signed a reseller agreement"},
		Priorities: []string{types.PriorityLow, types.PriorityMedium},
		Metadata: func(c mockCompany) map[string]any {
			return map[string]any{"partner": "Globex"}
		},
	},
	types.SignalProductLaunch: {
		Titles:     []string{"%s launched a new product line", "%s shipped their v2 platform"},
		Priorities: []string{types.PriorityMedium, types.PriorityLow},
		Metadata: func(c mockCompany) map[string]any {
			return map[string]any{"product": "v2 platform"}
		},
	},
	types.SignalLeadershipChange: {
		Titles:     []string{"%s hired a new CRO", "%s appointed a new CEO"},
		Priorities: []string{types.PriorityHigh, types.PriorityMedium},
		Metadata: func(c mockCompany) map[string]any {
			return map[string]any{"role": "CRO"}
		},
	},
}

// SimulateSignals fabricates a batch of plausible signals for demo and
// development environments and runs each through the automation pipeline.
func SimulateSignals(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SimulateSignalsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count := req.Count
	if count <= 0 {
		count = 3
	}
	if count > 20 {
		count = 20
	}

	created := make([]models.Signal, 0, count)

	for i := 0; i < count; i++ {
		company := mockCompanies[rand.Intn(len(mockCompanies))]
		signalType := types.SignalTypes[rand.Intn(len(types.SignalTypes))]
		template := mockTemplates[signalType]
		pick := rand.Intn(len(template.Titles))

		metadataJSON, err := json.Marshal(template.Metadata(company))
		if err != nil {
			log.Printf("Failed to marshal mock metadata: %v", err)
			continue
		}

		signal := models.Signal{
			UserID:        userID,
			CompanyName:   company.Name,
			CompanyDomain: company.Domain,
			SignalType:    signalType,
			Priority:      template.Priorities[pick],
			Title:         fmt.Sprintf(template.Titles[pick], company.Name),
			Summary:       fmt.Sprintf("%s for %s, spotted by the simulated feed.", types.SignalTypeLabel(signalType), company.Name),
			SourceName:    "Simulated Feed",
			SourceURL:     "https://" + company.Domain,
			Status:        types.StatusNew,
			DetectedAt:    time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour),
			Metadata:      metadataJSON,
		}

		if err := db.DB.Create(&signal).Error; err != nil {
			log.Printf("Failed to create simulated signal: %v", err)
			continue
		}

		runAutomation(ctx, &signal, userID)
		BroadcastSignal(userID, &signal)

		created = append(created, signal)
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"signals": created,
		"count":   len(created),
	})
}
