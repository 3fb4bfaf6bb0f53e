package domain

// RoomKind enumerates the logical broadcast groups the service knows about.
type RoomKind string

const (
	RoomClassroomMaterials     RoomKind = "classroom-materials"
	RoomClassroomAnnouncements RoomKind = "classroom-announcements"
	RoomLiveTest               RoomKind = "live-test"
	RoomLeaderboard            RoomKind = "leaderboard"
	RoomQuickQuiz              RoomKind = "quick-quiz"
	RoomUser                   RoomKind = "user"
)

// RoomKey addresses one broadcast group. Rooms have no persistent identity;
// a room exists only while at least one session is a member.
type RoomKey struct {
	Kind     RoomKind
	EntityID string
}

func (k RoomKey) String() string {
	return string(k.Kind) + ":" + k.EntityID
}

func MaterialsRoom(classroomID string) RoomKey {
	return RoomKey{Kind: RoomClassroomMaterials, EntityID: classroomID}
}

func AnnouncementsRoom(classroomID string) RoomKey {
	return RoomKey{Kind: RoomClassroomAnnouncements, EntityID: classroomID}
}

func LiveTestRoom(testID string) RoomKey {
	return RoomKey{Kind: RoomLiveTest, EntityID: testID}
}

func LeaderboardRoom(testID string) RoomKey {
	return RoomKey{Kind: RoomLeaderboard, EntityID: testID}
}

func QuickQuizRoom(quizID string) RoomKey {
	return RoomKey{Kind: RoomQuickQuiz, EntityID: quizID}
}

func UserRoom(userID string) RoomKey {
	return RoomKey{Kind: RoomUser, EntityID: userID}
}
