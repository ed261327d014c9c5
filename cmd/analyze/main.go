package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cropai/backend/internal/catalog"
	"github.com/cropai/backend/internal/domain"
	"github.com/cropai/backend/internal/service"
	"github.com/cropai/backend/pkg/logging"
	"github.com/cropai/backend/pkg/metrics"
)

func main() {
	// Parse command-line flags
	imagePath := flag.String("image", "", "Path to a soil photo to analyze")
	soilType := flag.String("soil-type", "", "Skip classification and recommend for this soil type")
	params := flag.String("params", "", `Environmental parameters as JSON, e.g. '{"N":90,"P":42,"K":43,"temperature":21,"humidity":82,"pH":6.5,"rainfall":203}'`)
	topN := flag.Int("top", service.DefaultTopN, "Number of crop recommendations to print")
	soilURL := flag.String("soil-url", "http://localhost:8000", "Soil classifier service URL")
	cropURL := flag.String("crop-url", "http://localhost:8001", "Crop classifier service URL")
	timeoutSec := flag.Int("timeout", 30, "Per-model timeout in seconds")
	checkHealth := flag.Bool("check-health", false, "Check model sidecar health and exit")
	flag.Parse()

	// Keep stdout clean for the report; structured logs go to stderr
	logger := logging.NewStructuredLogger("cropai-analyze", "2.0.0", logging.ParseLevel(os.Getenv("LOG_LEVEL")))
	logger.SetOutput(os.Stderr)
	collector := metrics.NewCollector("cropai_cli")

	cat, err := catalog.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid soil catalog: %v\n", err)
		os.Exit(1)
	}

	timeout := time.Duration(*timeoutSec) * time.Second
	soilModel := service.NewSoilBridge(*soilURL, timeout)
	cropModel := service.NewCropBridge(*cropURL, timeout)
	recommender := service.NewRecommenderService(soilModel, cropModel, cat, logger, collector)

	ctx := context.Background()

	if *checkHealth {
		printHealth(recommender.Health(ctx))
		return
	}

	overrides, err := parseParams(*params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -params: %v\n", err)
		os.Exit(2)
	}

	switch {
	case *imagePath != "":
		report, err := analyzeImage(ctx, recommender, *imagePath, overrides, *topN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
			os.Exit(1)
		}
		printReport(report)

	case *soilType != "":
		category, ok := domain.ParseSoilCategory(*soilType)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown soil type %q. Valid types: %s\n",
				*soilType, strings.Join(soilTypeNames(cat), ", "))
			os.Exit(2)
		}
		set, err := recommender.RecommendForCategory(ctx, category, overrides, *topN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Recommendation failed: %v\n", err)
			os.Exit(1)
		}
		printHeader("CROP RECOMMENDATIONS")
		fmt.Printf("Soil Type:      %s\n", set.SoilType)
		printRanking(set.Parameters, set.Recommendations, set.SuitableCrops)

	default:
		fmt.Fprintln(os.Stderr, "Either -image or -soil-type is required")
		flag.Usage()
		os.Exit(2)
	}
}

func analyzeImage(ctx context.Context, recommender *service.RecommenderService, path string, overrides *domain.ParameterOverrides, topN int) (*domain.AnalysisReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read image: %w", err)
	}

	img := domain.SoilImage{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}
	report, err := recommender.ClassifyAndRecommend(ctx, img, overrides, topN)
	return &report, err
}

func parseParams(raw string) (*domain.ParameterOverrides, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var overrides domain.ParameterOverrides
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, fmt.Errorf("must be a JSON object with numeric values: %w", err)
	}
	return &overrides, nil
}

func printHeader(title string) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", 80))
}

func printReport(report *domain.AnalysisReport) {
	printHeader("CROP RECOMMENDATION ANALYSIS")
	fmt.Printf("Analysis ID:    %s\n", report.AnalysisID)
	fmt.Printf("Generated At:   %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Printf("Soil Type:      %s (%.1f%% confidence)\n", report.SoilType, report.SoilConfidence)
	printRanking(report.Parameters, report.Recommendations, report.SuitableCrops)
}

func printRanking(params domain.EnvironmentalParameters, recs []domain.CropRecommendation, suitable []string) {
	fmt.Println("\nEnvironmental Parameters:")
	fmt.Printf("  N=%.1f  P=%.1f  K=%.1f\n", params.Nitrogen, params.Phosphorus, params.Potassium)
	fmt.Printf("  Temperature=%.1f°C  Humidity=%.1f%%  pH=%.2f  Rainfall=%.1fmm\n",
		params.Temperature, params.Humidity, params.PH, params.Rainfall)

	fmt.Println("\nTop Recommendations:")
	for i, rec := range recs {
		marker := " "
		if rec.SoilSuitable {
			marker = "*"
		}
		fmt.Printf("  %2d. %s %-14s score %.4f  (model probability %.4f)\n",
			i+1, marker, rec.Crop, rec.Score, rec.OriginalProbability)
	}
	fmt.Println("\n  * suited to this soil type")

	fmt.Printf("\nCrops suited to this soil: %s\n", strings.Join(suitable, ", "))
}

func printHealth(health domain.HealthStatus) {
	printHeader("MODEL HEALTH")
	printModelStatus("Soil classifier", health.SoilModel)
	printModelStatus("Crop classifier", health.CropModel)
	if !health.AllHealthy() {
		os.Exit(1)
	}
}

func printModelStatus(name string, status domain.ModelStatus) {
	if status.Healthy {
		fmt.Printf("%-16s healthy\n", name+":")
		return
	}
	fmt.Printf("%-16s unavailable (%s)\n", name+":", status.Error)
}

func soilTypeNames(cat *catalog.Catalog) []string {
	types := cat.SoilTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}
