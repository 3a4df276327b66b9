package metrics

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Global Tags
var (
	CollectionTag, _ = tag.NewKey("collection")
	CurrencyTag, _   = tag.NewKey("currency")
)

var (
	AskCreatedCount   = stats.Int64("asks/created", "number of asks created", stats.UnitDimensionless)
	AskFilledCount    = stats.Int64("asks/filled", "number of asks filled", stats.UnitDimensionless)
	AskCancelledCount = stats.Int64("asks/cancelled", "number of asks cancelled", stats.UnitDimensionless)

	OfferCreatedCount   = stats.Int64("offers/created", "number of offers created", stats.UnitDimensionless)
	OfferFilledCount    = stats.Int64("offers/filled", "number of offers filled", stats.UnitDimensionless)
	OfferCancelledCount = stats.Int64("offers/cancelled", "number of offers cancelled", stats.UnitDimensionless)

	AuctionCreatedCount   = stats.Int64("auctions/created", "number of auctions created", stats.UnitDimensionless)
	AuctionBidCount       = stats.Int64("auctions/bids", "number of auction bids placed", stats.UnitDimensionless)
	AuctionSettledCount   = stats.Int64("auctions/settled", "number of auctions settled", stats.UnitDimensionless)
	AuctionBuyNowCount    = stats.Int64("auctions/bought_now", "number of auctions closed via buy-now", stats.UnitDimensionless)
	AuctionCancelledCount = stats.Int64("auctions/cancelled", "number of auctions cancelled", stats.UnitDimensionless)
	AuctionExtendedCount  = stats.Int64("auctions/extended", "number of auctions extended by late bids", stats.UnitDimensionless)

	ProceedsSplitCount = stats.Int64("proceeds/splits", "number of proceeds distributions executed", stats.UnitDimensionless)
)

var (
	AskCreatedCountView = &view.View{
		Measure:     AskCreatedCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CollectionTag},
	}
	AskFilledCountView = &view.View{
		Measure:     AskFilledCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CollectionTag, CurrencyTag},
	}
	AskCancelledCountView = &view.View{
		Measure:     AskCancelledCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CollectionTag},
	}

	OfferCreatedCountView = &view.View{
		Measure:     OfferCreatedCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CollectionTag, CurrencyTag},
	}
	OfferFilledCountView = &view.View{
		Measure:     OfferFilledCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CollectionTag, CurrencyTag},
	}
	OfferCancelledCountView = &view.View{
		Measure:     OfferCancelledCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CollectionTag},
	}

	AuctionCreatedCountView = &view.View{
		Measure:     AuctionCreatedCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CollectionTag},
	}
	AuctionBidCountView = &view.View{
		Measure:     AuctionBidCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CollectionTag, CurrencyTag},
	}
	AuctionSettledCountView = &view.View{
		Measure:     AuctionSettledCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CollectionTag, CurrencyTag},
	}
	AuctionBuyNowCountView = &view.View{
		Measure:     AuctionBuyNowCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CollectionTag, CurrencyTag},
	}
	AuctionCancelledCountView = &view.View{
		Measure:     AuctionCancelledCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CollectionTag},
	}
	AuctionExtendedCountView = &view.View{
		Measure:     AuctionExtendedCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CollectionTag},
	}

	ProceedsSplitCountView = &view.View{
		Measure:     ProceedsSplitCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{CurrencyTag},
	}
)

var views = []*view.View{
	AskCreatedCountView,
	AskFilledCountView,
	AskCancelledCountView,
	OfferCreatedCountView,
	OfferFilledCountView,
	OfferCancelledCountView,
	AuctionCreatedCountView,
	AuctionBidCountView,
	AuctionSettledCountView,
	AuctionBuyNowCountView,
	AuctionCancelledCountView,
	AuctionExtendedCountView,
	ProceedsSplitCountView,
}
