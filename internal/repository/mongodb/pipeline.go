package mongodb

import (
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// channelProfilePipeline matches one user by username and joins the
// subscriptions where they are the channel and where they are the subscriber.
// A nil viewerID never matches a subscriber so isSubscribed stays false.
func channelProfilePipeline(username string, viewerID uuid.UUID) mongo.Pipeline {
	viewer := ""
	if viewerID != uuid.Nil {
		viewer = viewerID.String()
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         subscriptionsCollection,
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         subscriptionsCollection,
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscribersCount": bson.M{"$size": "$subscribers"},
			"subscribedCount":  bson.M{"$size": "$subscribedTo"},
			"isSubscribed": bson.M{"$cond": bson.M{
				"if":   bson.M{"$in": bson.A{viewer, "$subscribers.subscriber"}},
				"then": true,
				"else": false,
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"username":         1,
			"fullName":         1,
			"email":            1,
			"avatar":           1,
			"coverImage":       1,
			"subscribersCount": 1,
			"subscribedCount":  1,
			"isSubscribed":     1,
		}}},
		{{Key: "$limit", Value: 1}},
	}
}

// watchHistoryPipeline joins the user's watched video ids to their videos and
// each video's owner. $lookup does not keep the order of the local array, so
// the raw id list is returned alongside for the caller to reorder.
func watchHistoryPipeline(userID uuid.UUID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": userID.String()}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         videosCollection,
			"localField":   "watchHistory",
			"foreignField": "_id",
			"as":           "videos",
			"pipeline": bson.A{
				bson.M{"$lookup": bson.M{
					"from":         usersCollection,
					"localField":   "owner",
					"foreignField": "_id",
					"as":           "ownerInfo",
					"pipeline": bson.A{
						bson.M{"$project": bson.M{"fullName": 1, "username": 1, "avatar": 1}},
					},
				}},
				bson.M{"$addFields": bson.M{"ownerInfo": bson.M{"$first": "$ownerInfo"}}},
			},
		}}},
		{{Key: "$project", Value: bson.M{"watchHistory": 1, "videos": 1}}},
	}
}

// orderByHistory returns videos in watch history order, repeating a video
// for every time its id appears and skipping ids without a video.
func orderByHistory(ids []string, videos []videoDocument) []videoDocument {
	byID := make(map[string]videoDocument, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	ordered := make([]videoDocument, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered
}
